package points

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	pointsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/application"
	pointshandlers "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/infrastructure/handlers"
	pointsrouter "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/infrastructure/router"
	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the points module.
type Module struct {
	PointsService pointsservice.Service
	PointsRouter  *pointsrouter.PointsRouter
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewPointsModule creates the points calculator and registers its handlers.
func NewPointsModule(
	ctx context.Context,
	obs observability.Observability,
	settings settingsservice.Source,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "points.NewPointsModule called")

	pointsService := pointsservice.NewPointsService(settings, logger, obs.MetricsFor("points"), tracer)

	pointsRouter := pointsrouter.NewPointsRouter(logger, router, eventBus, eventBus, tracer)
	if err := pointsRouter.Configure(ctx, pointshandlers.NewPointsHandlers(pointsService, logger, tracer)); err != nil {
		return nil, fmt.Errorf("failed to configure points router: %w", err)
	}

	return &Module{
		PointsService: pointsService,
		PointsRouter:  pointsRouter,
		logger:        logger,
	}, nil
}

// Run blocks until ctx is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting points module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Points module goroutine stopped")
}

// Close stops the points module.
func (m *Module) Close() error {
	m.logger.Info("Stopping points module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.logger.Info("Points module stopped")
	return nil
}
