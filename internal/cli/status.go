package cli

import (
	"fmt"
	"os"

	"github.com/rmuit/file-indexer/internal/config"
	"github.com/rmuit/file-indexer/internal/status"
)

// StatusParams holds parameters for the Status function
type StatusParams struct {
	ConfigPath string
}

// Status prints a summary of the configuration and the index contents
func Status(params StatusParams) error {
	path := params.ConfigPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		path = config.Find(wd)
		if path == "" {
			return fmt.Errorf("no config file found (looked for %v)", config.SupportedConfigNames)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	data := status.Collect(path, cfg, st)
	fmt.Println(status.Render(data))
	return nil
}
