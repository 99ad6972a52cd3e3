package cli

import (
	"fmt"
	"os"

	"github.com/rmuit/file-indexer/internal/config"
)

// ValidateParams holds parameters for the Validate function
type ValidateParams struct {
	ConfigPath string
}

// Validate checks a config file against the schema and reports field-level
// errors
func Validate(params ValidateParams) error {
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

	result, err := config.ValidateFile(path)
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Printf("✓ %s is valid\n", path)
		return nil
	}

	fmt.Printf("✗ %s has %d error(s):\n", path, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  - %s: %s\n", e.Field, e.Message)
	}
	return fmt.Errorf("config validation failed")
}
