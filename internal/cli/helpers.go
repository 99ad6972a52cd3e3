// Package cli implements the findexer commands. Each command is a function
// taking a params struct, so the urfave/cli wiring in cmd/findexer stays
// declarative.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	// The supported database drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rmuit/file-indexer/internal/config"
	"github.com/rmuit/file-indexer/internal/store"
)

// loadConfig loads the config file from an explicit path, or finds one by
// its supported names in the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = config.Find(wd)
		if path == "" {
			return nil, fmt.Errorf("no config file found (looked for %v)", config.SupportedConfigNames)
		}
	}
	return config.Load(path)
}

// openStore opens the configured database and wraps it in a Store.
func openStore(cfg *config.Config) (*store.SQL, *sql.DB, error) {
	dsn := cfg.Database.DSN
	if dsn == "" && cfg.Database.Driver == "sqlite3" {
		dsn = "findexer.db"
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("db.dsn is required for driver %q", cfg.Database.Driver)
	}
	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	st, err := store.NewSQL(db, cfg.Database.Driver, cfg.Table, cfg.CacheFields, cfg.Mode())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return st, db, nil
}
