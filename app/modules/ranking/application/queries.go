package rankingservice

import (
	"context"
	"errors"
	"fmt"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/results"
	"github.com/google/uuid"
)

// GetRanking returns one page of a leaderboard. skip and take are clamped to
// the allowed page window. Invalid partitions are returned as errors wrapping
// the rankingdomain sentinels.
func (s *RankingService) GetRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, skip, take int) (*RankingPage, error) {
	result, err := withTelemetry(s, ctx, "GetRanking", fmt.Sprintf("%s:%d:%s:%s", tenantID, year, scopeType, scopeID), func(ctx context.Context) (results.OperationResult[*RankingPage, error], error) {
		partition, err := rankingdomain.NewPartition(tenantID, year, scopeType, scopeID)
		if err != nil {
			return results.FailureResult[*RankingPage, error](err), nil
		}
		skip, take := rankingdomain.ClampPage(skip, take)

		rows, err := s.snapshots.ListPartition(ctx, nil, partition, skip, take)
		if err != nil {
			return results.OperationResult[*RankingPage, error]{}, fmt.Errorf("failed to list partition: %w", err)
		}
		total, err := s.snapshots.CountPartition(ctx, nil, partition)
		if err != nil {
			return results.OperationResult[*RankingPage, error]{}, fmt.Errorf("failed to count partition: %w", err)
		}

		page := &RankingPage{
			Partition: partition,
			Skip:      skip,
			Take:      take,
			Total:     total,
			Entries:   make([]RankingEntry, len(rows)),
		}
		for i := range rows {
			page.Entries[i] = toEntry(&rows[i], skip+i+1)
		}
		return results.SuccessResult[*RankingPage, error](page), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// CountRanking returns the number of rows in a partition.
func (s *RankingService) CountRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) (int, error) {
	result, err := withTelemetry(s, ctx, "CountRanking", fmt.Sprintf("%s:%d:%s:%s", tenantID, year, scopeType, scopeID), func(ctx context.Context) (results.OperationResult[int, error], error) {
		partition, err := rankingdomain.NewPartition(tenantID, year, scopeType, scopeID)
		if err != nil {
			return results.FailureResult[int, error](err), nil
		}
		n, err := s.snapshots.CountPartition(ctx, nil, partition)
		if err != nil {
			return results.OperationResult[int, error]{}, fmt.Errorf("failed to count partition: %w", err)
		}
		return results.SuccessResult[int, error](n), nil
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}

// GetMemberRanking returns the member's row. A member without a row is not an
// error: Found is false.
func (s *RankingService) GetMemberRanking(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string, memberID uuid.UUID) (MemberRankingResult, error) {
	result, err := withTelemetry(s, ctx, "GetMemberRanking", memberID.String(), func(ctx context.Context) (results.OperationResult[MemberRankingResult, error], error) {
		partition, err := rankingdomain.NewPartition(tenantID, year, scopeType, scopeID)
		if err != nil {
			return results.FailureResult[MemberRankingResult, error](err), nil
		}
		if memberID == uuid.Nil {
			return results.FailureResult[MemberRankingResult, error](ErrMissingMember), nil
		}

		row, err := s.snapshots.GetMember(ctx, nil, partition, memberID)
		if err != nil {
			if errors.Is(err, rankingdb.ErrNotFound) {
				return results.SuccessResult[MemberRankingResult, error](MemberRankingResult{Found: false}), nil
			}
			return results.OperationResult[MemberRankingResult, error]{}, fmt.Errorf("failed to get member row: %w", err)
		}

		ahead, err := s.snapshots.CountAhead(ctx, nil, partition, row.TotalPoints)
		if err != nil {
			return results.OperationResult[MemberRankingResult, error]{}, fmt.Errorf("failed to count members ahead: %w", err)
		}
		return results.SuccessResult[MemberRankingResult, error](MemberRankingResult{
			Found: true,
			Entry: toEntry(row, rankingdomain.CompetitionRank(ahead)),
		}), nil
	})
	if err != nil {
		return MemberRankingResult{}, err
	}
	if result.IsFailure() {
		return MemberRankingResult{}, *result.Failure
	}
	return *result.Success, nil
}

// ListTenantsWithConfirmed returns tenants that have confirmed attendances
// for events in year.
func (s *RankingService) ListTenantsWithConfirmed(ctx context.Context, year int) ([]uuid.UUID, error) {
	tenants, err := s.ledger.ListTenantsWithConfirmed(ctx, nil, year)
	if err != nil {
		return nil, fmt.Errorf("ListTenantsWithConfirmed: %w", err)
	}
	return tenants, nil
}

func toEntry(row *rankingdb.RankingSnapshot, position int) RankingEntry {
	entry := RankingEntry{
		MemberID:         row.MemberID,
		Position:         position,
		TotalPoints:      row.TotalPoints,
		TotalMiles:       row.TotalMiles,
		EventsCount:      row.EventsCount,
		VisitorClass:     pointsdomain.ParseVisitorClass(row.VisitorClass),
		LastCalculatedAt: row.LastCalculatedAt,
	}
	if row.Rank != nil {
		entry.Rank = *row.Rank
	}
	return entry
}
