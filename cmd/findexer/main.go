// Package main is the entry point for the findexer CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	fcli "github.com/rmuit/file-indexer/internal/cli"
	"github.com/rmuit/file-indexer/pkg/version"
)

func main() {
	// A .env file in the working directory can set FINDEXER_CONFIG and
	// FINDEXER_LOG_LEVEL; the database DSN comes from the config file only.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:    "findexer",
		Usage:   "Reconcile a database-backed file index with the filesystem",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file",
				Sources: cli.EnvVars("FINDEXER_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("FINDEXER_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index the given paths (default: the allowed base directory)",
				ArgsUsage: "[paths...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reindex-all",
						Usage: "Rehash every file regardless of the cached record",
					},
					&cli.BoolFlag{
						Name:  "remove-nonexistent",
						Usage: "Delete inconsistent records instead of warning",
					},
					&cli.BoolFlag{
						Name:  "process-symlinks",
						Usage: "Index symlinks instead of skipping them",
					},
					&cli.BoolFlag{
						Name:  "sort-entries",
						Usage: "Sort directory entries before processing",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return fcli.Index(fcli.IndexParams{
						ConfigPath:        cmd.String("config"),
						LogLevel:          cmd.String("log-level"),
						Paths:             cmd.Args().Slice(),
						ReindexAll:        cmd.Bool("reindex-all"),
						RemoveNonexistent: cmd.Bool("remove-nonexistent"),
						ProcessSymlinks:   cmd.Bool("process-symlinks"),
						SortEntries:       cmd.Bool("sort-entries"),
					})
				},
			},
			{
				Name:  "init-db",
				Usage: "Create the index table and its indexes",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return fcli.InitDB(fcli.InitDBParams{
						ConfigPath: cmd.String("config"),
					})
				},
			},
			{
				Name:  "status",
				Usage: "Show the configuration and index summary",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return fcli.Status(fcli.StatusParams{
						ConfigPath: cmd.String("config"),
					})
				},
			},
			{
				Name:  "validate",
				Usage: "Validate the config file against the schema",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return fcli.Validate(fcli.ValidateParams{
						ConfigPath: cmd.String("config"),
					})
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
