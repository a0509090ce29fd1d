// Package app wires configuration, storage, messaging and the ranking
// modules into one running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking"
	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/config"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/db/bundb"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

// App holds every long-lived component of the service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server
	MetricsServer *http.Server
	Settings      *settingsservice.Store
	PointsModule  *points.Module
	RankingModule *ranking.Module

	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		Environment:    cfg.Observability.Environment,
		MetricsAddress: cfg.Observability.MetricsAddress,
		LogLevel:       cfg.Observability.LogLevel,
	})
	logger := obs.Logger

	app := &App{
		Config:        cfg,
		Observability: obs,
		logger:        logger,
	}

	db, err := bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db

	app.Settings = settingsservice.NewStore(settingsdb.NewRepository(db), logger, obs.MetricsFor("settings"), obs.Tracer)
	if err := app.Settings.Refresh(ctx); err != nil {
		// Defaults apply until the next refresh succeeds.
		logger.WarnContext(ctx, "Initial settings load failed", attr.Error(err))
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, cfg.NATS.QueueGroup, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(logger),
		}.Middleware,
	)
	app.Router = router

	httpRouter := chi.NewRouter()
	httpRouter.Use(chimiddleware.RequestID, chimiddleware.Recoverer)
	httpRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsHandler := promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})
	if cfg.Observability.MetricsAddress == "" {
		httpRouter.Handle("/metrics", metricsHandler)
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		app.MetricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	app.PointsModule, err = points.NewPointsModule(ctx, obs, app.Settings, bus, router)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize points module: %w", err)
	}

	app.RankingModule, err = ranking.NewRankingModule(ctx, cfg, obs, db, bus, router, httpRouter)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize ranking module: %w", err)
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

// Run starts every component and blocks until ctx is canceled or the
// message router stops.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(3)
	go app.PointsModule.Run(ctx, &app.wg)
	go app.RankingModule.Run(ctx, &app.wg)
	go func() {
		defer app.wg.Done()
		app.Settings.Run(ctx, app.Config.Ranking.SettingsRefresh)
	}()

	errCh := make(chan error, 3)
	go func() {
		app.logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if app.MetricsServer != nil {
		go func() {
			if err := app.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}
	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		app.logger.ErrorContext(ctx, "Component failed", attr.Error(err))
		return err
	}
}

// Close shuts everything down in reverse start order. It is safe to call on
// a partially initialized App.
func (app *App) Close() error {
	var errs []error
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if app.HTTPServer != nil {
		errs = append(errs, app.HTTPServer.Shutdown(shutdownCtx))
	}
	if app.MetricsServer != nil {
		errs = append(errs, app.MetricsServer.Shutdown(shutdownCtx))
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.RankingModule != nil {
		errs = append(errs, app.RankingModule.Close())
	}
	if app.PointsModule != nil {
		errs = append(errs, app.PointsModule.Close())
	}
	app.wg.Wait()
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	app.logger.Info("Application shut down gracefully")
	return nil
}
