package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the Prometheus registry and the engine metrics.
type Collector struct {
	registry *prometheus.Registry

	// Engine contains rule evaluation metrics.
	Engine *EngineMetrics
}

// NewCollector creates a collector with a fresh registry, Go runtime and
// process collectors, and the engine metric families registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry: registry,
		Engine:   NewEngineMetrics(registry),
	}
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint,
// typically mounted at "/metrics" in watch mode.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
