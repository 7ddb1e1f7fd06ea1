package config

import "time"

// Config is the root configuration for ganymede. It is typically loaded
// from a YAML file and amended by GANYMEDE_* environment variables.
type Config struct {
	// Rules configures where rule files are loaded from.
	Rules RulesConfig `yaml:"rules"`

	// Watch configures continuous evaluation mode.
	Watch WatchConfig `yaml:"watch"`

	// Findings configures evaluation-history storage.
	Findings FindingsConfig `yaml:"findings"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig controls rule loading.
type RulesConfig struct {
	// Paths lists rule files or directories. Directories are walked and
	// files with a recognized rule extension are loaded.
	Paths []string `yaml:"paths"`

	// MaxFileSize is the largest rule file the parser will accept, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Enabled turns on continuous evaluation of rules and templates.
	Enabled bool `yaml:"enabled"`

	// DebounceInterval coalesces bursts of filesystem events.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MetricsAddress, when non-empty, serves Prometheus metrics on this
	// address while watching (e.g. ":9090").
	MetricsAddress string `yaml:"metrics_address"`
}

// FindingsConfig controls persistence of evaluation runs.
type FindingsConfig struct {
	// Enabled turns on recording of evaluation runs.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention configures pruning of old runs.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the sqlite findings backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns bounds idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig controls how long findings are kept.
type RetentionConfig struct {
	// MaxAge is the oldest run retained. Zero disables pruning.
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is a cron expression for automatic pruning in watch mode.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns on metrics collection.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are served on.
	Path string `yaml:"path"`
}
