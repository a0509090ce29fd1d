package rankingrouter

import (
	"context"
	"log/slog"
	"os"

	rankinghandlers "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/handlers"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RankingRouter registers the ranking handlers on a Watermill router.
type RankingRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewRankingRouter creates a new RankingRouter. Router metrics are skipped
// when registry is nil or APP_ENV is "test".
func NewRankingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *RankingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &RankingRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the router with handlers.
func (r *RankingRouter) Configure(_ context.Context, handlers rankinghandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}
	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *RankingRouter) registerHandlers(h rankinghandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering ranking module handlers",
		slog.String("attendance_confirmed_subject", events.AttendanceConfirmedV1),
		slog.String("rebuild_requested_subject", events.RankingRebuildRequestedV1),
	)

	registerHandler(deps, events.AttendanceConfirmedV1, h.HandleAttendanceConfirmed)
	registerHandler(deps, events.RankingRebuildRequestedV1, h.HandleRebuildRequested)
}

// registerHandler registers a typed handler. Handlers publish their own
// results because ranking topics are tenant-scoped.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler handlerwrapper.TypedHandler[T],
) {
	handlerName := "ranking." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *RankingRouter) Close() error {
	return r.Router.Close()
}
