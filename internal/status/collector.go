package status

import (
	"github.com/rmuit/file-indexer/internal/config"
	"github.com/rmuit/file-indexer/internal/store"
	"github.com/rmuit/file-indexer/pkg/version"
)

// Collect gathers status data from the configuration and the store. Store
// errors are reported as an unready schema rather than failing the command;
// status must work against an uninitialized database.
func Collect(configPath string, cfg *config.Config, st store.Store) *Data {
	data := &Data{
		ConfigPath:  configPath,
		Version:     version.Version,
		AllowedBase: cfg.AllowedBaseDirectory,
		Table:       cfg.Table,
		HashAlgo:    cfg.HashAlgo,
		HashField:   cfg.HashField(),
		Mode:        cfg.Mode().String(),
		Driver:      cfg.Database.Driver,
	}

	count, err := st.CountRecords()
	if err != nil {
		return data
	}
	data.SchemaReady = true
	data.RecordCount = count

	if dirs, err := st.FetchSubdirNames(""); err == nil {
		data.TopLevelDirs = dirs
	}
	return data
}
