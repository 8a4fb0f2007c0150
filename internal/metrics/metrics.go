// Package metrics instruments sandbox calls with Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for sandbox call outcomes. A nil *Metrics
// is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	calls           *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	cleanupFailures prometheus.Counter
}

// New registers the collectors with reg. Pass a private registry in tests
// to avoid collisions with the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pysandbox_calls_total",
				Help: "Total number of sandbox calls by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pysandbox_call_duration_seconds",
				Help:    "Wall-clock duration of sandbox calls",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"kind"},
		),
		cleanupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pysandbox_cleanup_failures_total",
				Help: "Temp directory removals that failed and were only logged",
			},
		),
	}
}

// ObserveCall records one finished call.
func (m *Metrics) ObserveCall(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveCleanupFailure records a failed temp directory removal.
func (m *Metrics) ObserveCleanupFailure() {
	if m == nil {
		return
	}
	m.cleanupFailures.Inc()
}
