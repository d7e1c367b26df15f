// Package observability bridges engine lifecycle hooks to Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle events.
type Metrics struct {
	prompts     *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	directoryOp *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with the given
// registerer. Passing prometheus.DefaultRegisterer wires them into the
// default /metrics exposition.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		prompts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_prompts_total",
				Help: "Prompts emitted by the decision engine, by awaited slot.",
			},
			[]string{"awaiting"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_outcomes_total",
				Help: "Terminal session outcomes.",
			},
			[]string{"outcome"},
		),
		directoryOp: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardflow_directory_op_seconds",
				Help:    "Latency of account directory calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "result"},
		),
	}
	reg.MustRegister(m.prompts, m.outcomes, m.directoryOp)
	return m
}

// Hooks returns LifecycleHooks that record into the collectors. Merge with
// other hooks by hand if the engine also needs logging callbacks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPrompt: func(ctx context.Context, e *domain.PromptEvent) {
			m.prompts.WithLabelValues(string(e.Awaiting)).Inc()
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			m.outcomes.WithLabelValues(string(e.Outcome)).Inc()
		},
		OnDirectoryReturn: func(ctx context.Context, e *domain.DirectoryEvent) {
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.directoryOp.WithLabelValues(e.Op, result).Observe(e.Elapsed.Seconds())
		},
	}
}
