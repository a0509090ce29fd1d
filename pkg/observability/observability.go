// Package observability bundles the logger, tracer and metrics registry that
// modules receive at construction time.
package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects logging and metrics behavior.
type Config struct {
	ServiceName    string
	Environment    string
	MetricsAddress string
	LogLevel       string
}

// Observability is handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
}

// New builds the process-wide observability bundle. Production environments
// log JSON, everything else logs text.
func New(cfg Config) Observability {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(cfg.ServiceName),
		Registry: registry,
	}
}

// MetricsFor returns Prometheus operation metrics for subsystem, falling back
// to a noop implementation when registration fails or no registry is set.
func (o Observability) MetricsFor(subsystem string) OperationMetrics {
	if o.Registry == nil {
		return NewNoop()
	}
	m, err := NewPrometheusMetrics(o.Registry, subsystem)
	if err != nil {
		if o.Logger != nil {
			o.Logger.Warn("Falling back to noop metrics", slog.String("subsystem", subsystem), slog.String("error", err.Error()))
		}
		return NewNoop()
	}
	return m
}
