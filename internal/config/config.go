// Package config handles loading and validation of findexer configuration.
// Configuration is read once at startup and immutable afterwards; the
// constructor refuses anything the engine could not run with.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/rmuit/file-indexer/internal/casemode"
	"github.com/rmuit/file-indexer/internal/ferrors"
	"github.com/rmuit/file-indexer/internal/hash"
)

// SupportedConfigNames contains supported configuration file names (in order
// of preference).
var SupportedConfigNames = []string{
	"findexer.yml",
	"findexer.yaml",
	"findexer.toml",
	"findexer.json",
}

// identifierRe limits the table and column names that end up in SQL.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB holds the database connection settings.
type DB struct {
	// Driver is the database/sql driver name: sqlite3, mysql or postgres.
	Driver string `koanf:"driver"`
	// DSN is the driver-specific data source name.
	DSN string `koanf:"dsn"`
}

// Config is the full configuration surface of the indexer.
type Config struct {
	// AllowedBaseDirectory is the root below which all indexing happens; no
	// path above it is ever touched. Required, absolute.
	AllowedBaseDirectory string `koanf:"allowed_base_directory"`
	// BaseDirectory resolves relative input paths. Defaults to the working
	// directory of the process.
	BaseDirectory string `koanf:"base_directory"`
	// Table is the database table name.
	Table string `koanf:"table"`
	// CacheFields are the columns fetched and written besides fid, dir and
	// filename. The first one is the content hash.
	CacheFields []string `koanf:"cache_fields"`
	// HashAlgo is the content hash algorithm.
	HashAlgo string `koanf:"hash_algo"`
	// CaseInsensitiveDatabase indicates the table collation ignores case.
	CaseInsensitiveDatabase bool `koanf:"case_insensitive_database"`
	// CaseInsensitiveFilesystem indicates filenames on disk ignore case.
	CaseInsensitiveFilesystem bool `koanf:"case_insensitive_filesystem"`
	// ReindexAll rehashes every file regardless of the cached record.
	ReindexAll bool `koanf:"reindex_all"`
	// RemoveNonexistentFromIndex makes the consistency checks delete instead
	// of warn.
	RemoveNonexistentFromIndex bool `koanf:"remove_nonexistent_from_index"`
	// ProcessSymlinks passes symlinks on to the file/directory processors
	// instead of skipping them.
	ProcessSymlinks bool `koanf:"process_symlinks"`
	// SortDirectoryEntries sorts readdir output before processing.
	SortDirectoryEntries bool `koanf:"sort_directory_entries"`
	// Database holds the connection settings.
	Database DB `koanf:"db"`
	// LogLevel is the minimum level written to the log sink.
	LogLevel string `koanf:"log_level"`
}

// Default returns a Config with all optional keys at their defaults.
func Default() *Config {
	return &Config{
		Table:                   "file",
		CacheFields:             []string{"sha256"},
		HashAlgo:                "sha256",
		CaseInsensitiveDatabase: true,
		Database:                DB{Driver: "sqlite3"},
		LogLevel:                "warn",
	}
}

// parserFor selects a koanf parser by file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return kyaml.Parser(), nil
	case ".toml":
		return ktoml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config file format: %s", path)
}

// Load reads a configuration file on top of the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return unmarshal(k)
}

// LoadBytes parses configuration from raw bytes in the given format
// ("yaml", "toml" or "json") on top of the defaults.
func LoadBytes(content []byte, format string) (*Config, error) {
	parser, err := parserFor("config." + format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find locates a config file by its supported names in the given directory.
// Returns "" when none exists.
func Find(dir string) string {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks every key the engine depends on. The returned errors are
// ferrors.ConfigError values naming the offending key.
func (c *Config) Validate() error {
	if c.AllowedBaseDirectory == "" {
		return ferrors.NewConfigError("allowed_base_directory", "allowed_base_directory is required")
	}
	if !filepath.IsAbs(c.AllowedBaseDirectory) {
		return ferrors.NewConfigError("allowed_base_directory",
			fmt.Sprintf("allowed_base_directory must be absolute, got %q", c.AllowedBaseDirectory))
	}
	if c.BaseDirectory != "" && !filepath.IsAbs(c.BaseDirectory) {
		return ferrors.NewConfigError("base_directory",
			fmt.Sprintf("base_directory must be absolute, got %q", c.BaseDirectory))
	}
	if !identifierRe.MatchString(c.Table) {
		return ferrors.NewConfigError("table", fmt.Sprintf("invalid table name %q", c.Table))
	}
	if len(c.CacheFields) == 0 {
		return ferrors.NewConfigError("cache_fields", "cache_fields must not be empty")
	}
	for _, f := range c.CacheFields {
		if !identifierRe.MatchString(f) {
			return ferrors.NewConfigError("cache_fields", fmt.Sprintf("invalid field name %q", f))
		}
	}
	if _, err := hash.New(c.HashAlgo); err != nil {
		return ferrors.NewConfigError("hash_algo", err.Error())
	}
	switch c.Database.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return ferrors.NewConfigError("db.driver",
			fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
	}
	return nil
}

// Mode returns the case-matching mode derived from the two sensitivity flags.
func (c *Config) Mode() casemode.Mode {
	return casemode.New(c.CaseInsensitiveFilesystem, c.CaseInsensitiveDatabase)
}

// HashField returns the column holding the content hash.
func (c *Config) HashField() string {
	return c.CacheFields[0]
}

// ResolveBaseDirectory returns BaseDirectory, falling back to the process
// working directory.
func (c *Config) ResolveBaseDirectory() (string, error) {
	if c.BaseDirectory != "" {
		return c.BaseDirectory, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
