package cli

import (
	"fmt"
)

// InitDBParams holds parameters for the InitDB function
type InitDBParams struct {
	ConfigPath string
}

// InitDB creates the index table and its indexes if they do not exist
func InitDB(params InitDBParams) error {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	fmt.Printf("✓ Table %s ready (%s)\n", cfg.Table, cfg.Database.Driver)
	return nil
}
