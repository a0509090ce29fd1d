package rankingservice

import (
	"context"

	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/google/uuid"
)

// Service maintains and serves the per-scope yearly leaderboards.
//
// Write operations never return errors: failures are reported in their result
// values so callers can carry on. Read operations return storage errors.
type Service interface {
	// UpdateIncremental adds one confirmed attendance to one scope and
	// recomputes the member's competition rank.
	UpdateIncremental(ctx context.Context, tenantID uuid.UUID, ev AttendanceConfirmedEvent) RankingUpdateResult

	// ApplyConfirmedAttendance runs UpdateIncremental for every scope the
	// member belongs to.
	ApplyConfirmedAttendance(ctx context.Context, att ConfirmedAttendance) AttendanceApplyResult

	// Rebuild recomputes a scope from the attendance ledger. An empty scopeID
	// rebuilds every scope id of scopeType.
	Rebuild(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) RankingRebuildResult

	// RebuildAll rebuilds every scope of every type for the tenant and year.
	RebuildAll(ctx context.Context, tenantID uuid.UUID, year int) RankingRebuildResult

	// GetRanking returns a page ordered by points desc, miles desc.
	GetRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, skip, take int) (*RankingPage, error)

	// CountRanking returns how many members the partition holds.
	CountRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) (int, error)

	// GetMemberRanking looks up one member's row.
	GetMemberRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, memberID uuid.UUID) (MemberRankingResult, error)

	// ListTenantsWithConfirmed returns tenants that have ledger data for year.
	ListTenantsWithConfirmed(ctx context.Context, year int) ([]uuid.UUID, error)
}
