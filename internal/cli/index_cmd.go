package cli

import (
	"fmt"

	"github.com/rmuit/file-indexer/internal/indexer"
	"github.com/rmuit/file-indexer/internal/logger"
)

// IndexParams holds parameters for the Index function
type IndexParams struct {
	ConfigPath string
	LogLevel   string
	Paths      []string
	// The flags below turn the corresponding config keys on for this run.
	ReindexAll        bool
	RemoveNonexistent bool
	ProcessSymlinks   bool
	SortEntries       bool
}

// Index reconciles the given paths with the index
func Index(params IndexParams) error {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if params.ReindexAll {
		cfg.ReindexAll = true
	}
	if params.RemoveNonexistent {
		cfg.RemoveNonexistentFromIndex = true
	}
	if params.ProcessSymlinks {
		cfg.ProcessSymlinks = true
	}
	if params.SortEntries {
		cfg.SortDirectoryEntries = true
	}

	level := params.LogLevel
	if level == "" {
		level = cfg.LogLevel
	}
	log := logger.New(level, nil)

	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ix, err := indexer.New(cfg, log, st)
	if err != nil {
		return err
	}

	paths := params.Paths
	if len(paths) == 0 {
		paths = []string{cfg.AllowedBaseDirectory}
	}
	ok, err := ix.ProcessPaths(paths)
	if err != nil {
		return fmt.Errorf("indexing aborted: %w", err)
	}
	if !ok {
		return fmt.Errorf("one or more paths failed validation")
	}
	return nil
}
