// Package config defines ganymede's configuration model and loading.
//
// Configuration is read from a YAML file, filled in with defaults, and
// optionally overridden by GANYMEDE_* environment variables:
//
//	rules:
//	  paths:
//	    - policies/
//	findings:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/findings.db
//	  retention:
//	    max_age: 2160h
//	    schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: text
//
// Every command works without a configuration file; flags and defaults
// cover the common cases.
package config
