package rankingservice

import (
	"context"
	"errors"
	"fmt"
	"math"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrMissingMember = errors.New("member id is required")
	ErrInvalidMiles  = errors.New("miles recorded must be a non-negative number")
)

// UpdateIncremental adds ev to the member's row in ev's scope and stores the
// member's competition rank: one plus the number of rows with strictly more
// points. Ranks of other members are left as they are until the next rebuild.
// Redelivering an attendance that was already applied to the scope changes
// nothing and reports the member's current row.
func (s *RankingService) UpdateIncremental(ctx context.Context, tenantID uuid.UUID, ev AttendanceConfirmedEvent) RankingUpdateResult {
	identifier := fmt.Sprintf("%s:%d:%s:%s", tenantID, ev.Year, ev.ScopeType, ev.ScopeID)

	result, err := withTelemetry(s, ctx, "UpdateIncremental", identifier, func(ctx context.Context) (results.OperationResult[RankingUpdateResult, string], error) {
		partition, err := rankingdomain.NewPartition(tenantID, ev.Year, ev.ScopeType, ev.ScopeID)
		if err != nil {
			return results.FailureResult[RankingUpdateResult, string](err.Error()), nil
		}
		if ev.MemberID == uuid.Nil {
			return results.FailureResult[RankingUpdateResult, string](ErrMissingMember.Error()), nil
		}
		if ev.MilesRecorded < 0 || math.IsNaN(ev.MilesRecorded) || math.IsInf(ev.MilesRecorded, 0) {
			return results.FailureResult[RankingUpdateResult, string](ErrInvalidMiles.Error()), nil
		}

		release, err := s.locks.acquire(ctx, partition.Key())
		if err != nil {
			return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to acquire partition lock: %w", err)
		}
		defer release()

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[RankingUpdateResult, string], error) {
			return s.updateIncrementalLogic(ctx, db, partition, ev)
		})
	})
	if err != nil {
		return RankingUpdateResult{Success: false, Message: err.Error()}
	}
	if result.IsFailure() {
		return RankingUpdateResult{Success: false, Message: *result.Failure}
	}
	return *result.Success
}

func (s *RankingService) updateIncrementalLogic(ctx context.Context, db bun.IDB, partition rankingdomain.Partition, ev AttendanceConfirmedEvent) (results.OperationResult[RankingUpdateResult, string], error) {
	if err := s.snapshots.LockPartition(ctx, db, partition); err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to lock partition: %w", err)
	}

	if ev.AttendanceID != uuid.Nil {
		fresh, err := s.snapshots.MarkApplied(ctx, db, partition, ev.AttendanceID)
		if err != nil {
			return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to mark attendance applied: %w", err)
		}
		if !fresh {
			return s.alreadyApplied(ctx, db, partition, ev)
		}
	}

	row, err := s.snapshots.UpsertIncrement(ctx, db, &rankingdb.RankingSnapshot{
		TenantID:         partition.TenantID,
		Year:             partition.Year,
		ScopeType:        string(partition.Scope.Type),
		ScopeID:          partition.Scope.ID,
		MemberID:         ev.MemberID,
		TotalPoints:      ev.PointsAwarded,
		TotalMiles:       ev.MilesRecorded,
		EventsCount:      1,
		VisitorClass:     string(pointsdomain.ParseVisitorClass(string(ev.VisitorClass))),
		LastCalculatedAt: s.now().UTC(),
	})
	if err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	ahead, err := s.snapshots.CountAhead(ctx, db, partition, row.TotalPoints)
	if err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to count members ahead: %w", err)
	}
	rank := rankingdomain.CompetitionRank(ahead)

	if err := s.snapshots.SetRank(ctx, db, partition, ev.MemberID, rank); err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to store rank: %w", err)
	}

	return results.SuccessResult[RankingUpdateResult, string](RankingUpdateResult{
		Success:     true,
		Message:     fmt.Sprintf("member ranked %d in %s", rank, partition.Scope),
		NewRank:     rank,
		TotalPoints: row.TotalPoints,
		TotalMiles:  row.TotalMiles,
	}), nil
}

// alreadyApplied reports the member's stored row without changing it.
func (s *RankingService) alreadyApplied(ctx context.Context, db bun.IDB, partition rankingdomain.Partition, ev AttendanceConfirmedEvent) (results.OperationResult[RankingUpdateResult, string], error) {
	s.logger.InfoContext(ctx, "Attendance already applied to scope (idempotent no-op)",
		attr.ExtractCorrelationID(ctx),
		attr.TenantID(partition.TenantID),
		attr.UUID("attendance_id", ev.AttendanceID),
		attr.String("scope", partition.Scope.String()),
	)

	row, err := s.snapshots.GetMember(ctx, db, partition, ev.MemberID)
	if err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to load applied member row: %w", err)
	}

	ahead, err := s.snapshots.CountAhead(ctx, db, partition, row.TotalPoints)
	if err != nil {
		return results.OperationResult[RankingUpdateResult, string]{}, fmt.Errorf("failed to count members ahead: %w", err)
	}
	rank := rankingdomain.CompetitionRank(ahead)

	return results.SuccessResult[RankingUpdateResult, string](RankingUpdateResult{
		Success:     true,
		Message:     fmt.Sprintf("attendance already applied; member ranked %d in %s", rank, partition.Scope),
		NewRank:     rank,
		TotalPoints: row.TotalPoints,
		TotalMiles:  row.TotalMiles,
	}), nil
}
