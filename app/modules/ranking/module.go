package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankinghandlers "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/handlers"
	rankinghttp "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/http"
	rankingqueue "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/queue"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	rankingrouter "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/router"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/config"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/jwt"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the ranking module.
type Module struct {
	EventBus       eventbus.EventBus
	RankingService rankingservice.Service
	RankingRouter  *rankingrouter.RankingRouter
	Queue          rankingqueue.QueueService
	config         *config.Config
	cancelFunc     context.CancelFunc
	logger         *slog.Logger
}

// NewRankingModule creates a new instance of the Ranking module. When
// httpRouter is nil no HTTP routes are registered; when the queue is disabled
// admin rebuilds over HTTP answer 503.
func NewRankingModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer
	metrics := obs.MetricsFor("ranking")

	logger.InfoContext(ctx, "ranking.NewRankingModule called")

	rankingService := rankingservice.NewRankingService(
		rankingdb.NewRepository(db),
		attendancedb.NewRepository(db),
		logger,
		metrics,
		tracer,
		db,
	)

	rankingRouter := rankingrouter.NewRankingRouter(logger, router, eventBus, eventBus, tracer, obs.Registry)
	if err := rankingRouter.Configure(ctx, rankinghandlers.NewRankingHandlers(rankingService, logger, tracer)); err != nil {
		return nil, fmt.Errorf("failed to configure ranking router: %w", err)
	}

	module := &Module{
		EventBus:       eventBus,
		RankingService: rankingService,
		RankingRouter:  rankingRouter,
		config:         cfg,
		logger:         logger,
	}

	var enqueuer rankingqueue.Enqueuer
	if !cfg.Ranking.DisableQueue {
		queue, err := rankingqueue.NewService(
			ctx,
			logger,
			cfg.Postgres.DSN,
			obs.MetricsFor("ranking_queue"),
			rankingService,
			eventBus,
			rankingqueue.Config{
				NightlyHour: cfg.Ranking.NightlyRebuildHour,
				MaxWorkers:  cfg.Ranking.MaxWorkers,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ranking queue: %w", err)
		}
		module.Queue = queue
		enqueuer = queue
	}

	if httpRouter != nil {
		rankinghttp.Mount(
			httpRouter,
			rankinghttp.NewHandlers(rankingService, enqueuer, logger, tracer),
			jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			rankinghttp.RouteConfig{
				RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
				Burst:             cfg.HTTP.Burst,
			},
		)
	}

	return module, nil
}

// Run starts the ranking job queue and blocks until ctx is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting ranking module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		// Close stops the queue gracefully; cancelling ctx must not abort jobs.
		if err := m.Queue.Start(context.WithoutCancel(ctx)); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start ranking queue", "error", err)
			return
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Ranking module goroutine stopped")
}

// Close stops the ranking module and cleans up resources.
func (m *Module) Close() error {
	m.logger.Info("Stopping ranking module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(context.Background()); err != nil {
			m.logger.Error("Error stopping ranking queue", "error", err)
			return fmt.Errorf("error stopping ranking queue: %w", err)
		}
	}

	m.logger.Info("Ranking module stopped")
	return nil
}
