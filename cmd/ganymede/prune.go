package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/findings"
)

var pruneFlags struct {
	maxAge time.Duration
	dryRun bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old evaluation runs",
	Long: `Remove evaluation runs older than the retention window.

Without --max-age the window from the configuration file is used
(default 90 days).

Examples:
  # Prune with the configured retention window
  ganymede prune

  # Remove runs older than 30 days
  ganymede prune --max-age 720h

  # Show what would be removed
  ganymede prune --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().DurationVar(&pruneFlags.maxAge, "max-age", 0, "remove runs older than this (overrides config)")
	pruneCmd.Flags().BoolVar(&pruneFlags.dryRun, "dry-run", false, "report what would be removed without removing")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	newLogger(cfg)

	maxAge := cfg.Findings.Retention.MaxAge
	if pruneFlags.maxAge > 0 {
		maxAge = pruneFlags.maxAge
	}
	if maxAge <= 0 {
		return cli.NewExitCodeError(cli.ExitError,
			fmt.Errorf("no retention window: set --max-age or findings.retention.max_age"))
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-maxAge)

	if pruneFlags.dryRun {
		runs, err := storage.Query(ctx, &findings.Query{Until: cutoff})
		if err != nil {
			return cli.NewExitCodeError(cli.ExitError, fmt.Errorf("query failed: %w", err))
		}
		fmt.Printf("would remove %d runs older than %s\n", len(runs), cutoff.Format(time.RFC3339))
		return nil
	}

	pruner := findings.NewPruner(storage, &findings.RetentionConfig{MaxAge: maxAge})
	removed, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, fmt.Errorf("prune failed: %w", err))
	}

	fmt.Printf("removed %d runs older than %s\n", removed, cutoff.Format(time.RFC3339))
	return nil
}
