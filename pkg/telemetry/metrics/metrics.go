package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/engine"
)

const namespace = "ganymede"

// EngineMetrics records rule evaluation outcomes. It implements
// engine.MetricsRecorder so it can be attached with engine.WithMetrics.
type EngineMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	violationsTotal    *prometheus.CounterVec
	runsTotal          *prometheus.CounterVec
}

// NewEngineMetrics creates the engine metric families and registers them
// with the given registry.
func NewEngineMetrics(registry *prometheus.Registry) *EngineMetrics {
	m := &EngineMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total rule evaluations by rule name and verdict.",
			},
			[]string{"rule", "verdict"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Time spent evaluating a single rule.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"rule"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total violations recorded by rule name.",
			},
			[]string{"rule"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total evaluation runs by compliance outcome.",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.violationsTotal,
		m.runsTotal,
	)

	return m
}

// RecordRuleEvaluation records a single rule's verdict and duration.
func (m *EngineMetrics) RecordRuleEvaluation(rule string, verdict engine.Verdict, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(rule, string(verdict)).Inc()
	m.evaluationDuration.WithLabelValues(rule).Observe(duration.Seconds())
}

// RecordViolations records the number of violations produced by a rule.
func (m *EngineMetrics) RecordViolations(rule string, count int) {
	if count > 0 {
		m.violationsTotal.WithLabelValues(rule).Add(float64(count))
	}
}

// RecordRun records a completed evaluation run.
func (m *EngineMetrics) RecordRun(report *engine.Report) {
	outcome := "compliant"
	if report.Failed() {
		outcome = "non_compliant"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
}
