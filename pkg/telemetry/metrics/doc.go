// Package metrics exposes Prometheus instrumentation for the rule engine.
//
// A Collector owns a private registry with Go runtime and process
// collectors plus the engine metric families. Attach the engine metrics
// with engine.WithMetrics and mount Collector.Handler at /metrics when
// running in watch mode.
package metrics
