package rankingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

// QueueService defines the contract for ranking background jobs.
type QueueService interface {
	Enqueuer
	// Start starts processing jobs and the nightly schedule.
	Start(ctx context.Context) error
	// Stop waits for running jobs and closes the pool.
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config tunes the ranking queue.
type Config struct {
	// NightlyHour is the UTC hour the reconciliation runs at.
	NightlyHour int
	MaxWorkers  int
}

// Service runs ranking jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService creates the River client, registers the ranking workers and
// schedules the nightly reconciliation.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	metrics observability.OperationMetrics,
	ranking rankingservice.Service,
	publisher message.Publisher,
	cfg Config,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_ranking_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing ranking queue service")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	service := &Service{
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRebuildScopeWorker(ctxLogger, ranking, publisher))
	river.AddWorker(workers, NewNightlyRebuildWorker(ctxLogger, ranking, service))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueName:          {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				dailyAt{Hour: cfg.NightlyHour},
				func() (river.JobArgs, *river.InsertOpts) {
					return NightlyRebuildJob{}, &river.InsertOpts{Queue: QueueName}
				},
				nil,
			),
		},
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	service.client = riverClient

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Ranking queue service initialized successfully",
		attr.Int("nightly_hour_utc", cfg.NightlyHour),
		attr.Int("max_workers", maxWorkers),
	)
	return service, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting ranking queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	s.logger.Info("Ranking queue service started successfully")
	return nil
}

// Stop stops the River queue service
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping ranking queue service")
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Ranking queue service stopped successfully")
	return nil
}

// EnqueueRebuild inserts a rebuild job. Identical pending jobs are
// de-duplicated by their arguments.
func (s *Service) EnqueueRebuild(ctx context.Context, job RebuildScopeJob) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_rebuild", "river")

	ctxLogger := s.logger.With(
		attr.String("tenant_id", job.TenantID),
		attr.Int("year", job.Year),
		attr.String("scope_type", job.ScopeType),
		attr.String("scope_id", job.ScopeID),
		attr.String("operation", "enqueue_rebuild"),
	)

	res, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue: QueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRetryable,
				rivertype.JobStateRunning,
				rivertype.JobStateScheduled,
			},
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue rebuild job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_rebuild", "river")
		return 0, fmt.Errorf("failed to enqueue rebuild job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_rebuild", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_rebuild", "river", time.Since(start))

	ctxLogger.Info("Rebuild job enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}
