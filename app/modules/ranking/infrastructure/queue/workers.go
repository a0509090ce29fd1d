package rankingqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Enqueuer inserts rebuild jobs.
type Enqueuer interface {
	EnqueueRebuild(ctx context.Context, job RebuildScopeJob) (int64, error)
}

// RebuildScopeWorker runs rebuild jobs and announces their outcome on
// ranking.rebuilt.v1.
type RebuildScopeWorker struct {
	river.WorkerDefaults[RebuildScopeJob]

	service   rankingservice.Service
	publisher message.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewRebuildScopeWorker creates a RebuildScopeWorker. publisher may be nil.
func NewRebuildScopeWorker(logger *slog.Logger, service rankingservice.Service, publisher message.Publisher) *RebuildScopeWorker {
	return &RebuildScopeWorker{
		service:   service,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Timeout bounds a single rebuild attempt.
func (w *RebuildScopeWorker) Timeout(*river.Job[RebuildScopeJob]) time.Duration {
	return 10 * time.Minute
}

// Work runs the rebuild. Malformed jobs are cancelled; failed rebuilds are
// returned as errors so River retries them.
func (w *RebuildScopeWorker) Work(ctx context.Context, job *river.Job[RebuildScopeJob]) error {
	args := job.Args
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.String("tenant_id", args.TenantID),
		attr.Int("year", args.Year),
		attr.String("scope_type", args.ScopeType),
		attr.String("scope_id", args.ScopeID),
	)

	tenantID, err := uuid.Parse(args.TenantID)
	if err != nil {
		logger.WarnContext(ctx, "Cancelling rebuild job with invalid tenant id", attr.Error(err))
		return river.JobCancel(fmt.Errorf("invalid tenant id %q: %w", args.TenantID, err))
	}

	var res rankingservice.RankingRebuildResult
	if args.ScopeType == "" {
		res = w.service.RebuildAll(ctx, tenantID, args.Year)
	} else {
		scopeType, err := rankingdomain.ParseScopeType(args.ScopeType)
		if err != nil {
			logger.WarnContext(ctx, "Cancelling rebuild job with invalid scope type", attr.Error(err))
			return river.JobCancel(err)
		}
		res = w.service.Rebuild(ctx, tenantID, args.Year, scopeType, args.ScopeID)
	}

	if err := w.announce(ctx, args, res); err != nil {
		logger.WarnContext(ctx, "Failed to publish rebuild outcome", attr.Error(err))
	}

	if !res.Success {
		logger.ErrorContext(ctx, "Rebuild job failed",
			attr.String("message", res.Message),
			attr.Int64("elapsed_ms", res.ElapsedMs),
		)
		return fmt.Errorf("rebuild failed: %s", res.Message)
	}

	logger.InfoContext(ctx, "Rebuild job completed",
		attr.Int("updated_count", res.UpdatedCount),
		attr.Int64("elapsed_ms", res.ElapsedMs),
	)
	return nil
}

func (w *RebuildScopeWorker) announce(ctx context.Context, args RebuildScopeJob, res rankingservice.RankingRebuildResult) error {
	if w.publisher == nil {
		return nil
	}
	msg, err := handlerwrapper.NewJSONMessage(ctx, &events.RankingRebuiltPayloadV1{
		TenantID:     args.TenantID,
		Year:         args.Year,
		ScopeType:    args.ScopeType,
		ScopeID:      args.ScopeID,
		Success:      res.Success,
		Message:      res.Message,
		UpdatedCount: res.UpdatedCount,
		ElapsedMs:    res.ElapsedMs,
		CompletedAt:  w.now().UTC(),
	})
	if err != nil {
		return err
	}
	return eventbus.PublishWithTenantScope(w.publisher, events.RankingRebuiltV1, args.TenantID, msg)
}

// NightlyRebuildWorker enqueues a full rebuild for every tenant that has
// confirmed attendances in the years being reconciled.
type NightlyRebuildWorker struct {
	river.WorkerDefaults[NightlyRebuildJob]

	service  rankingservice.Service
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewNightlyRebuildWorker creates a NightlyRebuildWorker.
func NewNightlyRebuildWorker(logger *slog.Logger, service rankingservice.Service, enqueuer Enqueuer) *NightlyRebuildWorker {
	return &NightlyRebuildWorker{
		service:  service,
		enqueuer: enqueuer,
		logger:   logger,
		now:      time.Now,
	}
}

// Work lists tenants per year and enqueues their rebuilds. Enqueue failures
// for one tenant do not stop the others.
func (w *NightlyRebuildWorker) Work(ctx context.Context, job *river.Job[NightlyRebuildJob]) error {
	var errs []error
	enqueued := 0

	for _, year := range yearsToReconcile(w.now()) {
		tenants, err := w.service.ListTenantsWithConfirmed(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to list tenants for %d: %w", year, err)
		}
		for _, tenantID := range tenants {
			_, err := w.enqueuer.EnqueueRebuild(ctx, RebuildScopeJob{
				TenantID:    tenantID.String(),
				Year:        year,
				RequestedBy: "nightly",
			})
			if err != nil {
				w.logger.WarnContext(ctx, "Failed to enqueue nightly rebuild",
					attr.TenantID(tenantID),
					attr.Int("year", year),
					attr.Error(err),
				)
				errs = append(errs, err)
				continue
			}
			enqueued++
		}
	}

	w.logger.InfoContext(ctx, "Nightly ranking reconciliation scheduled",
		attr.Int64("job_id", job.ID),
		attr.Int("enqueued", enqueued),
		attr.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}
