package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. Environment
// variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g. GANYMEDE_FINDINGS_BACKEND)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GANYMEDE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	if val := os.Getenv("GANYMEDE_RULES_PATHS"); val != "" {
		cfg.Rules.Paths = splitPaths(val)
	}
	if val := os.Getenv("GANYMEDE_RULES_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Rules.MaxFileSize = i
		}
	}

	// Watch overrides
	if val := os.Getenv("GANYMEDE_WATCH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Watch.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_WATCH_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.DebounceInterval = d
		}
	}
	if val := os.Getenv("GANYMEDE_WATCH_METRICS_ADDRESS"); val != "" {
		cfg.Watch.MetricsAddress = val
	}

	// Findings overrides
	if val := os.Getenv("GANYMEDE_FINDINGS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Findings.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_FINDINGS_BACKEND"); val != "" {
		cfg.Findings.Backend = val
	}
	if val := os.Getenv("GANYMEDE_FINDINGS_SQLITE_PATH"); val != "" {
		cfg.Findings.SQLite.Path = val
	}
	if val := os.Getenv("GANYMEDE_FINDINGS_RETENTION_MAX_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Findings.Retention.MaxAge = d
		}
	}
	if val := os.Getenv("GANYMEDE_FINDINGS_RETENTION_SCHEDULE"); val != "" {
		cfg.Findings.Retention.Schedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}

// splitPaths splits a comma- or os.PathListSeparator-separated list.
func splitPaths(val string) []string {
	sep := ","
	if strings.ContainsRune(val, os.PathListSeparator) {
		sep = string(os.PathListSeparator)
	}
	parts := strings.Split(val, sep)
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
