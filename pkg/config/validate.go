package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

var validBackends = map[string]bool{
	"sqlite": true,
	"memory": true,
}

// Validate checks the configuration for invalid values. It assumes
// defaults have already been applied.
func Validate(cfg *Config) error {
	if cfg.Rules.MaxFileSize < 0 {
		return fmt.Errorf("rules.max_file_size must not be negative, got %d", cfg.Rules.MaxFileSize)
	}

	if cfg.Watch.DebounceInterval < 0 {
		return fmt.Errorf("watch.debounce_interval must not be negative, got %s", cfg.Watch.DebounceInterval)
	}

	if !validBackends[cfg.Findings.Backend] {
		return fmt.Errorf("findings.backend must be \"sqlite\" or \"memory\", got %q", cfg.Findings.Backend)
	}
	if cfg.Findings.Backend == "sqlite" && cfg.Findings.SQLite.Path == "" {
		return fmt.Errorf("findings.sqlite.path must not be empty when the sqlite backend is selected")
	}
	if cfg.Findings.SQLite.MaxOpenConns < cfg.Findings.SQLite.MaxIdleConns {
		return fmt.Errorf("findings.sqlite.max_open_conns (%d) must not be less than max_idle_conns (%d)",
			cfg.Findings.SQLite.MaxOpenConns, cfg.Findings.SQLite.MaxIdleConns)
	}
	if cfg.Findings.Retention.MaxAge < 0 {
		return fmt.Errorf("findings.retention.max_age must not be negative, got %s", cfg.Findings.Retention.MaxAge)
	}
	if cfg.Findings.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Findings.Retention.Schedule); err != nil {
			return fmt.Errorf("findings.retention.schedule is not a valid cron expression: %w", err)
		}
	}

	if !validLogLevels[cfg.Telemetry.Logging.Level] {
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			cfg.Telemetry.Logging.Level)
	}
	if !validLogFormats[cfg.Telemetry.Logging.Format] {
		return fmt.Errorf("telemetry.logging.format must be \"text\" or \"json\", got %q",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
