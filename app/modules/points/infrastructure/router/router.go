package pointsrouter

import (
	"context"
	"log/slog"

	pointshandlers "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/infrastructure/handlers"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// PointsRouter handles Watermill handler registration for points events.
type PointsRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewPointsRouter creates a new PointsRouter.
func NewPointsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *PointsRouter {
	return &PointsRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *PointsRouter) Configure(_ context.Context, handlers pointshandlers.Handlers) error {
	handlerName := "points." + events.PointsCalculationRequestedV1

	r.logger.Info("Registering points module handlers",
		slog.String("calculation_requested_subject", events.PointsCalculationRequestedV1),
	)

	r.router.AddNoPublisherHandler(
		handlerName,
		events.PointsCalculationRequestedV1,
		r.subscriber,
		handlerwrapper.WrapTyped(handlerName, r.logger, r.tracer, r.publisher, handlers.HandleCalculationRequested),
	)
	return nil
}

// Close shuts down the router.
func (r *PointsRouter) Close() error {
	return r.router.Close()
}
