package rankinghttp

import (
	"context"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingqueue "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/queue"
	"github.com/google/uuid"
)

// ------------------------
// Fake Ranking Service
// ------------------------

type FakeRankingService struct {
	trace []string

	UpdateIncrementalFunc        func(ctx context.Context, tenantID uuid.UUID, ev rankingservice.AttendanceConfirmedEvent) rankingservice.RankingUpdateResult
	ApplyConfirmedAttendanceFunc func(ctx context.Context, att rankingservice.ConfirmedAttendance) rankingservice.AttendanceApplyResult
	RebuildFunc                  func(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) rankingservice.RankingRebuildResult
	RebuildAllFunc               func(ctx context.Context, tenantID uuid.UUID, year int) rankingservice.RankingRebuildResult
	GetRankingFunc               func(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, skip, take int) (*rankingservice.RankingPage, error)
	CountRankingFunc             func(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) (int, error)
	GetMemberRankingFunc         func(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, memberID uuid.UUID) (rankingservice.MemberRankingResult, error)
	ListTenantsWithConfirmedFunc func(ctx context.Context, year int) ([]uuid.UUID, error)
}

func NewFakeRankingService() *FakeRankingService {
	return &FakeRankingService{
		trace: []string{},
	}
}

func (f *FakeRankingService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeRankingService) UpdateIncremental(ctx context.Context, tenantID uuid.UUID, ev rankingservice.AttendanceConfirmedEvent) rankingservice.RankingUpdateResult {
	f.record("UpdateIncremental")
	if f.UpdateIncrementalFunc != nil {
		return f.UpdateIncrementalFunc(ctx, tenantID, ev)
	}
	return rankingservice.RankingUpdateResult{}
}

func (f *FakeRankingService) ApplyConfirmedAttendance(ctx context.Context, att rankingservice.ConfirmedAttendance) rankingservice.AttendanceApplyResult {
	f.record("ApplyConfirmedAttendance")
	if f.ApplyConfirmedAttendanceFunc != nil {
		return f.ApplyConfirmedAttendanceFunc(ctx, att)
	}
	return rankingservice.AttendanceApplyResult{}
}

func (f *FakeRankingService) Rebuild(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) rankingservice.RankingRebuildResult {
	f.record("Rebuild")
	if f.RebuildFunc != nil {
		return f.RebuildFunc(ctx, tenantID, year, scopeType, scopeID)
	}
	return rankingservice.RankingRebuildResult{}
}

func (f *FakeRankingService) RebuildAll(ctx context.Context, tenantID uuid.UUID, year int) rankingservice.RankingRebuildResult {
	f.record("RebuildAll")
	if f.RebuildAllFunc != nil {
		return f.RebuildAllFunc(ctx, tenantID, year)
	}
	return rankingservice.RankingRebuildResult{}
}

func (f *FakeRankingService) GetRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, skip, take int) (*rankingservice.RankingPage, error) {
	f.record("GetRanking")
	if f.GetRankingFunc != nil {
		return f.GetRankingFunc(ctx, tenantID, year, scopeType, scopeID, skip, take)
	}
	return &rankingservice.RankingPage{}, nil
}

func (f *FakeRankingService) CountRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) (int, error) {
	f.record("CountRanking")
	if f.CountRankingFunc != nil {
		return f.CountRankingFunc(ctx, tenantID, year, scopeType, scopeID)
	}
	return 0, nil
}

func (f *FakeRankingService) GetMemberRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, memberID uuid.UUID) (rankingservice.MemberRankingResult, error) {
	f.record("GetMemberRanking")
	if f.GetMemberRankingFunc != nil {
		return f.GetMemberRankingFunc(ctx, tenantID, year, scopeType, scopeID, memberID)
	}
	return rankingservice.MemberRankingResult{}, nil
}

func (f *FakeRankingService) ListTenantsWithConfirmed(ctx context.Context, year int) ([]uuid.UUID, error) {
	f.record("ListTenantsWithConfirmed")
	if f.ListTenantsWithConfirmedFunc != nil {
		return f.ListTenantsWithConfirmedFunc(ctx, year)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeRankingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ rankingservice.Service = (*FakeRankingService)(nil)

// FakeEnqueuer records rebuild jobs.
type FakeEnqueuer struct {
	jobs []rankingqueue.RebuildScopeJob

	EnqueueRebuildFunc func(ctx context.Context, job rankingqueue.RebuildScopeJob) (int64, error)
}

func (f *FakeEnqueuer) EnqueueRebuild(ctx context.Context, job rankingqueue.RebuildScopeJob) (int64, error) {
	if f.EnqueueRebuildFunc != nil {
		return f.EnqueueRebuildFunc(ctx, job)
	}
	f.jobs = append(f.jobs, job)
	return int64(len(f.jobs)), nil
}

var _ rankingqueue.Enqueuer = (*FakeEnqueuer)(nil)
