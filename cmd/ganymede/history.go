package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/findings"
)

var historyFlags struct {
	since    string
	until    string
	template string
	failed   bool
	limit    int
	format   string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded evaluation runs",
	Long: `Query the findings store for past evaluation runs, newest first.

Time bounds accept a Go duration relative to now (e.g. "24h") or an
RFC 3339 timestamp.

Examples:
  # Runs from the last day
  ganymede history --since 24h

  # Non-compliant runs for one template
  ganymede history --template stack.yaml --failed

  # Latest 10 runs as JSON
  ganymede history --limit 10 --format json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only runs after this time (duration or RFC 3339)")
	historyCmd.Flags().StringVar(&historyFlags.until, "until", "", "only runs before this time (duration or RFC 3339)")
	historyCmd.Flags().StringVarP(&historyFlags.template, "template", "t", "", "only runs for this template")
	historyCmd.Flags().BoolVar(&historyFlags.failed, "failed", false, "only non-compliant runs")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 0, "maximum number of runs (0 = all)")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, csv")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	newLogger(cfg)

	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}

	query := &findings.Query{
		TemplatePath: historyFlags.template,
		OnlyFailed:   historyFlags.failed,
		Limit:        historyFlags.limit,
	}
	if query.Since, err = parseTimeBound(historyFlags.since); err != nil {
		return cli.NewExitCodeError(cli.ExitError, fmt.Errorf("invalid --since: %w", err))
	}
	if query.Until, err = parseTimeBound(historyFlags.until); err != nil {
		return cli.NewExitCodeError(cli.ExitError, fmt.Errorf("invalid --until: %w", err))
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := storage.Query(ctx, query)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, fmt.Errorf("query failed: %w", err))
	}

	if err := cli.WriteRuns(os.Stdout, format, runs); err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	return nil
}

// parseTimeBound accepts a relative duration ("24h") or an RFC 3339
// timestamp. An empty string means no bound.
func parseTimeBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither a duration nor an RFC 3339 timestamp", s)
	}
	return t, nil
}
