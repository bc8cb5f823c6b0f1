package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records attempt/success/failure counts and durations for
// one module's service operations.
type OperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewOperationMetrics registers the operation metric family for a module.
// subsystem becomes part of the metric names (quiz_<subsystem>_...).
func NewOperationMetrics(reg *prometheus.Registry, subsystem string) *OperationMetrics {
	m := &OperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Number of operation invocations.",
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: subsystem,
			Name:      "operation_successes_total",
			Help:      "Number of operations that returned a success payload.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Number of operations that errored or panicked.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	}
	return m
}

// NoOpMetrics returns an unregistered metrics set for tests.
func NoOpMetrics() *OperationMetrics {
	return NewOperationMetrics(nil, "test")
}

func (m *OperationMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.durations.WithLabelValues(operation).Observe(d.Seconds())
}
