package config

import "time"

// Default values applied to unset fields.
const (
	DefaultMaxFileSize      = 1 << 20 // 1 MiB
	DefaultDebounceInterval = 200 * time.Millisecond
	DefaultFindingsBackend  = "sqlite"
	DefaultSQLitePath       = "data/findings.db"
	DefaultMaxOpenConns     = 10
	DefaultMaxIdleConns     = 5
	DefaultBusyTimeout      = 5 * time.Second
	DefaultRetentionMaxAge  = 90 * 24 * time.Hour
	DefaultPruneSchedule    = "0 3 * * *"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in default values for any unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultDebounceInterval
	}

	if cfg.Findings.Backend == "" {
		cfg.Findings.Backend = DefaultFindingsBackend
	}
	if cfg.Findings.SQLite.Path == "" {
		cfg.Findings.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Findings.SQLite.MaxOpenConns == 0 {
		cfg.Findings.SQLite.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.Findings.SQLite.MaxIdleConns == 0 {
		cfg.Findings.SQLite.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Findings.SQLite.BusyTimeout == 0 {
		cfg.Findings.SQLite.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Findings.Retention.MaxAge == 0 {
		cfg.Findings.Retention.MaxAge = DefaultRetentionMaxAge
	}
	if cfg.Findings.Retention.Schedule == "" {
		cfg.Findings.Retention.Schedule = DefaultPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
