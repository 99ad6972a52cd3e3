// Package status collects and renders a summary of the index and the
// configuration in effect.
package status

// Data contains all the information to display in status
type Data struct {
	// Header
	ConfigPath string
	Version    string

	// Configuration
	AllowedBase string
	Table       string
	HashAlgo    string
	HashField   string
	Mode        string

	// Database
	Driver      string
	SchemaReady bool

	// Index contents
	RecordCount  int64
	TopLevelDirs []string
}
