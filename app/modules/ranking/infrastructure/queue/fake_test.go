package rankingqueue

import (
	"context"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Ranking Service
// ------------------------

// FakeRankingService covers the calls the workers make; the rest return
// zero values.
type FakeRankingService struct {
	rankingservice.Service
	trace []string

	RebuildFunc                  func(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) rankingservice.RankingRebuildResult
	RebuildAllFunc               func(ctx context.Context, tenantID uuid.UUID, year int) rankingservice.RankingRebuildResult
	ListTenantsWithConfirmedFunc func(ctx context.Context, year int) ([]uuid.UUID, error)
}

func (f *FakeRankingService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRankingService) Rebuild(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) rankingservice.RankingRebuildResult {
	f.record("Rebuild")
	if f.RebuildFunc != nil {
		return f.RebuildFunc(ctx, tenantID, year, scopeType, scopeID)
	}
	return rankingservice.RankingRebuildResult{Success: true}
}

func (f *FakeRankingService) RebuildAll(ctx context.Context, tenantID uuid.UUID, year int) rankingservice.RankingRebuildResult {
	f.record("RebuildAll")
	if f.RebuildAllFunc != nil {
		return f.RebuildAllFunc(ctx, tenantID, year)
	}
	return rankingservice.RankingRebuildResult{Success: true}
}

func (f *FakeRankingService) ListTenantsWithConfirmed(ctx context.Context, year int) ([]uuid.UUID, error) {
	f.record("ListTenantsWithConfirmed")
	if f.ListTenantsWithConfirmedFunc != nil {
		return f.ListTenantsWithConfirmedFunc(ctx, year)
	}
	return nil, nil
}

func (f *FakeRankingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Enqueuer
// ------------------------

type FakeEnqueuer struct {
	jobs []RebuildScopeJob

	EnqueueRebuildFunc func(ctx context.Context, job RebuildScopeJob) (int64, error)
}

func (f *FakeEnqueuer) EnqueueRebuild(ctx context.Context, job RebuildScopeJob) (int64, error) {
	if f.EnqueueRebuildFunc != nil {
		return f.EnqueueRebuildFunc(ctx, job)
	}
	f.jobs = append(f.jobs, job)
	return int64(len(f.jobs)), nil
}

var _ Enqueuer = (*FakeEnqueuer)(nil)
