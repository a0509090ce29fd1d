package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of service operations.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

type prometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheusMetrics registers operation collectors on reg under subsystem.
// Registering the same subsystem twice on one registry returns the collectors
// that are already registered.
func NewPrometheusMetrics(reg prometheus.Registerer, subsystem string) (OperationMetrics, error) {
	labels := []string{"operation", "service"}
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lama",
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Number of service operations started.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lama",
			Subsystem: subsystem,
			Name:      "operation_success_total",
			Help:      "Number of service operations that completed without an infrastructure error.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lama",
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Number of service operations that failed.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lama",
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}

	var err error
	if m.attempts, err = registerOrReuse(reg, m.attempts); err != nil {
		return nil, err
	}
	if m.successes, err = registerOrReuse(reg, m.successes); err != nil {
		return nil, err
	}
	if m.failures, err = registerOrReuse(reg, m.failures); err != nil {
		return nil, err
	}
	if m.duration, err = registerOrReuse(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

type noopMetrics struct{}

// NewNoop returns metrics that discard every observation.
func NewNoop() OperationMetrics { return noopMetrics{} }

func (noopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
