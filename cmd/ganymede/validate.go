package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/engine"
	"mercator-hq/ganymede/pkg/gcl/ast"
	"mercator-hq/ganymede/pkg/engine/source"
	"mercator-hq/ganymede/pkg/findings"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

var validateFlags struct {
	rules       string
	template    string
	format      string
	watch       bool
	metricsAddr string
	noRecord    bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Evaluate compliance rules against a template",
	Long: `Evaluate GCL rules against an infrastructure template.

Each rule in the rule set produces exactly one verdict: PASS when every
body clause held, FAIL when at least one clause failed, or SKIPPED when
the rule's guard did not hold. Violations carry the failing document path
and the rule-authored message.

Examples:
  # Evaluate a rule file against a template
  ganymede validate --rules s3.gcl --template stack.yaml

  # Evaluate a directory of rule files
  ganymede validate --rules policies/ --template stack.yaml

  # JSON output for CI/CD
  ganymede validate --rules s3.gcl --template stack.yaml --format json

  # Re-evaluate whenever rules or template change
  ganymede validate --rules policies/ --template stack.yaml --watch

Exit codes: 0 compliant, 1 non-compliant, 2 evaluation error.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rules, "rules", "r", "", "rule file or directory (defaults to rules.paths from config)")
	validateCmd.Flags().StringVarP(&validateFlags.template, "template", "t", "", "template file to evaluate (required)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json, csv")
	validateCmd.Flags().BoolVarP(&validateFlags.watch, "watch", "w", false, "re-evaluate when rules or template change")
	validateCmd.Flags().StringVar(&validateFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address in watch mode")
	validateCmd.Flags().BoolVar(&validateFlags.noRecord, "no-record", false, "do not record this run in findings storage")

	validateCmd.MarkFlagRequired("template")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	if validateFlags.watch {
		cfg.Watch.Enabled = true
	}
	if validateFlags.metricsAddr != "" {
		cfg.Watch.MetricsAddress = validateFlags.metricsAddr
	}

	logger := newLogger(cfg)

	rulePaths := cfg.Rules.Paths
	if validateFlags.rules != "" {
		rulePaths = []string{validateFlags.rules}
	}
	if len(rulePaths) == 0 {
		return cli.NewExitCodeError(cli.ExitError,
			fmt.Errorf("no rule paths: set --rules or rules.paths in the config"))
	}

	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}

	ctx := cli.SetupSignalHandler()

	var (
		storage  findings.Storage
		recorder *findings.Recorder
	)
	if cfg.Findings.Enabled && !validateFlags.noRecord {
		storage, err = openStorage(cfg)
		if err != nil {
			return cli.NewExitCodeError(cli.ExitError, err)
		}
		defer storage.Close()
		recorder = findings.NewRecorder(storage, findings.DefaultRecorderConfig())
		defer recorder.Close()
	}

	eng := engine.New(logger)

	var collector *metrics.Collector
	if cfg.Watch.Enabled && cfg.Watch.MetricsAddress != "" {
		collector = metrics.NewCollector()
		eng = eng.WithMetrics(collector.Engine)
	}

	rulesLabel := strings.Join(rulePaths, ",")
	evaluate := func() (*engine.Report, error) {
		return evaluateOnce(ctx, eng, logger, rulePaths, cfg.Rules.MaxFileSize)
	}

	if !cfg.Watch.Enabled {
		report, err := evaluate()
		if err != nil {
			return cli.NewExitCodeError(cli.ExitError, err)
		}
		if err := cli.WriteReport(os.Stdout, format, report); err != nil {
			return cli.NewExitCodeError(cli.ExitError, err)
		}
		if recorder != nil {
			recorder.Record(report, rulesLabel, validateFlags.template)
		}
		if report.Failed() {
			return cli.NewExitCodeError(cli.ExitNonCompliant, nil)
		}
		return nil
	}

	return watchAndValidate(ctx, cfg, logger, format, collector, storage, recorder, rulePaths, evaluate)
}

// evaluateOnce loads the rules and template from disk and evaluates every
// loaded rule set, merging the results into a single report.
func evaluateOnce(ctx context.Context, eng *engine.Engine, logger *slog.Logger,
	rulePaths []string, maxFileSize int64) (*engine.Report, error) {

	doc, err := loadTemplate(validateFlags.template)
	if err != nil {
		return nil, err
	}

	var ruleSets []*ast.RuleSet
	for _, path := range rulePaths {
		ruleSource := source.NewFileSource(path, logger)
		if maxFileSize > 0 {
			ruleSource = ruleSource.WithMaxFileSize(maxFileSize)
		}
		loaded, err := ruleSource.LoadRuleSets(ctx)
		if err != nil {
			return nil, err
		}
		ruleSets = append(ruleSets, loaded...)
	}
	if len(ruleSets) == 0 {
		return nil, fmt.Errorf("no rules loaded from %v", rulePaths)
	}

	reports := make([]*engine.Report, 0, len(ruleSets))
	for _, rs := range ruleSets {
		report, err := eng.Evaluate(ctx, rs, doc)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", rs.SourceFile, err)
		}
		reports = append(reports, report)
	}

	return mergeReports(reports), nil
}

// watchAndValidate runs the evaluation in a loop, re-triggered by file
// changes, until the context is canceled.
func watchAndValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger,
	format cli.OutputFormat, collector *metrics.Collector, storage findings.Storage,
	recorder *findings.Recorder, rulePaths []string, evaluate func() (*engine.Report, error)) error {

	rulesLabel := strings.Join(rulePaths, ",")
	runOnce := func() error {
		report, err := evaluate()
		if err != nil {
			logger.Error("evaluation failed", "error", err)
			return nil // keep watching
		}
		if err := cli.WriteReport(os.Stdout, format, report); err != nil {
			return err
		}
		if collector != nil {
			collector.Engine.RecordRun(report)
		}
		if recorder != nil {
			recorder.Record(report, rulesLabel, validateFlags.template)
		}
		return nil
	}

	if err := runOnce(); err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}

	if collector != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		server := &http.Server{Addr: cfg.Watch.MetricsAddress, Handler: mux}
		go func() {
			logger.Info("serving metrics", "address", cfg.Watch.MetricsAddress, "path", cfg.Telemetry.Metrics.Path)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	if storage != nil && cfg.Findings.Retention.MaxAge > 0 && cfg.Findings.Retention.Schedule != "" {
		pruner := findings.NewPruner(storage, &findings.RetentionConfig{
			MaxAge:        cfg.Findings.Retention.MaxAge,
			PruneSchedule: cfg.Findings.Retention.Schedule,
		})
		scheduler := findings.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("retention scheduler not started", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	watcherCfg := source.DefaultWatcherConfig()
	watcherCfg.Paths = append(append([]string{}, rulePaths...), validateFlags.template)
	watcherCfg.DebounceInterval = cfg.Watch.DebounceInterval

	watcher, err := source.NewWatcher(watcherCfg, logger)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	defer watcher.Stop()

	logger.Info("watching for changes",
		"rules", rulesLabel, "template", validateFlags.template)

	if err := watcher.Watch(ctx, runOnce); err != nil && ctx.Err() == nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	return nil
}

// loadTemplate reads and parses a YAML or JSON template file.
func loadTemplate(path string) (*document.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %q: %w", path, err)
	}
	doc, err := document.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", path, err)
	}
	return doc, nil
}

// openStorage opens the configured findings backend.
func openStorage(cfg *config.Config) (findings.Storage, error) {
	switch cfg.Findings.Backend {
	case "memory":
		return findings.NewMemoryStorage(), nil
	default:
		return findings.NewSQLiteStorage(&findings.SQLiteConfig{
			Path:         cfg.Findings.SQLite.Path,
			MaxOpenConns: cfg.Findings.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Findings.SQLite.MaxIdleConns,
			WALMode:      true,
			BusyTimeout:  cfg.Findings.SQLite.BusyTimeout,
		})
	}
}

// mergeReports flattens per-file reports into one, preserving file order.
func mergeReports(reports []*engine.Report) *engine.Report {
	if len(reports) == 1 {
		return reports[0]
	}

	merged := &engine.Report{
		EvaluatedAt: reports[0].EvaluatedAt,
	}
	for _, r := range reports {
		merged.Results = append(merged.Results, r.Results...)
		merged.Violations = append(merged.Violations, r.Violations...)
		merged.Duration += r.Duration
	}
	return merged
}
