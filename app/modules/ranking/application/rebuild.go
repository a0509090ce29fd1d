package rankingservice

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// rebuildOutcome is the success payload of a rebuild transaction.
type rebuildOutcome struct {
	Partitions   int
	UpdatedCount int
}

// Rebuild replaces the stored rows of one scope, or of every scope id of
// scopeType when scopeID is empty, with aggregates recomputed from the
// confirmed ledger. Readers see either the old rows or the new ones.
func (s *RankingService) Rebuild(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, scopeID string) RankingRebuildResult {
	start := time.Now()
	identifier := fmt.Sprintf("%s:%d:%s:%s", tenantID, year, scopeType, scopeID)

	result, err := withTelemetry(s, ctx, "Rebuild", identifier, func(ctx context.Context) (results.OperationResult[rebuildOutcome, string], error) {
		wholeType := strings.TrimSpace(scopeID) == "" && scopeType != rankingdomain.ScopeGlobal
		target := scopeID
		if wholeType {
			target = "*"
		}
		template, err := rankingdomain.NewPartition(tenantID, year, scopeType, target)
		if err != nil {
			return results.FailureResult[rebuildOutcome, string](err.Error()), nil
		}

		partitions := []rankingdomain.Partition{template}
		if wholeType {
			partitions, err = s.knownPartitions(ctx, tenantID, year, scopeType)
			if err != nil {
				return results.OperationResult[rebuildOutcome, string]{}, err
			}
		}

		keys := make([]string, len(partitions))
		for i, p := range partitions {
			keys[i] = p.Key()
		}
		release, err := s.locks.acquireAll(ctx, keys)
		if err != nil {
			return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to acquire partition locks: %w", err)
		}
		defer release()

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[rebuildOutcome, string], error) {
			return s.rebuildLogic(ctx, db, tenantID, year, scopeType, partitions, wholeType)
		})
	})

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return RankingRebuildResult{Success: false, Message: err.Error(), ElapsedMs: elapsed}
	}
	if result.IsFailure() {
		return RankingRebuildResult{Success: false, Message: *result.Failure, ElapsedMs: elapsed}
	}
	outcome := *result.Success
	return RankingRebuildResult{
		Success:      true,
		Message:      fmt.Sprintf("rebuilt %d rows across %d %s partitions", outcome.UpdatedCount, outcome.Partitions, scopeType),
		UpdatedCount: outcome.UpdatedCount,
		ElapsedMs:    elapsed,
	}
}

// RebuildAll rebuilds every scope type in turn. It keeps going after a
// failing type and reports success only when all of them succeed.
func (s *RankingService) RebuildAll(ctx context.Context, tenantID uuid.UUID, year int) RankingRebuildResult {
	start := time.Now()
	total := 0
	var failures []string

	for _, t := range rankingdomain.ScopeTypes {
		res := s.Rebuild(ctx, tenantID, year, t, "")
		if !res.Success {
			failures = append(failures, fmt.Sprintf("%s: %s", t, res.Message))
			continue
		}
		total += res.UpdatedCount
	}

	elapsed := time.Since(start).Milliseconds()
	if len(failures) > 0 {
		return RankingRebuildResult{
			Success:      false,
			Message:      strings.Join(failures, "; "),
			UpdatedCount: total,
			ElapsedMs:    elapsed,
		}
	}
	return RankingRebuildResult{
		Success:      true,
		Message:      fmt.Sprintf("rebuilt %d rows across %d scope types", total, len(rankingdomain.ScopeTypes)),
		UpdatedCount: total,
		ElapsedMs:    elapsed,
	}
}

// knownPartitions returns every partition of scopeType that has ledger data
// or stored rows, sorted by key.
func (s *RankingService) knownPartitions(ctx context.Context, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]rankingdomain.Partition, error) {
	stored, err := s.snapshots.ListScopeIDs(ctx, nil, tenantID, year, scopeType)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored scope ids: %w", err)
	}
	ledger, err := s.ledger.ListConfirmed(ctx, nil, tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	ids := stored
	for id := range rankingdomain.Aggregate(toLedgerEntries(ledger), scopeType) {
		ids = append(ids, id)
	}
	return partitionsFor(tenantID, year, scopeType, ids), nil
}

func (s *RankingService) rebuildLogic(
	ctx context.Context,
	db bun.IDB,
	tenantID uuid.UUID,
	year int,
	scopeType rankingdomain.ScopeType,
	partitions []rankingdomain.Partition,
	wholeType bool,
) (results.OperationResult[rebuildOutcome, string], error) {
	for _, p := range partitions {
		if err := s.snapshots.LockPartition(ctx, db, p); err != nil {
			return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to lock partition %s: %w", p.Key(), err)
		}
	}

	ledger, err := s.ledger.ListConfirmed(ctx, db, tenantID, year)
	if err != nil {
		return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to read ledger: %w", err)
	}
	entries := toLedgerEntries(ledger)
	aggregated := rankingdomain.Aggregate(entries, scopeType)
	applied := appliedByScope(entries, scopeType)

	if wholeType {
		// Scope ids confirmed since the partitions were listed.
		var extra []string
		for id := range aggregated {
			if !slices.ContainsFunc(partitions, func(p rankingdomain.Partition) bool { return p.Scope.ID == id }) {
				extra = append(extra, id)
			}
		}
		for _, p := range partitionsFor(tenantID, year, scopeType, extra) {
			if err := s.snapshots.LockPartition(ctx, db, p); err != nil {
				return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to lock partition %s: %w", p.Key(), err)
			}
			partitions = append(partitions, p)
		}
	}

	now := s.now().UTC()
	updated := 0
	for _, p := range partitions {
		if _, err := s.snapshots.DeletePartition(ctx, db, p); err != nil {
			return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to clear partition %s: %w", p.Key(), err)
		}
		rows := toSnapshots(p, aggregated[p.Scope.ID], now)
		if err := s.snapshots.BulkInsert(ctx, db, rows); err != nil {
			return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to insert partition %s: %w", p.Key(), err)
		}
		if err := s.snapshots.ResetApplied(ctx, db, p, applied[p.Scope.ID]); err != nil {
			return results.OperationResult[rebuildOutcome, string]{}, fmt.Errorf("failed to reset applied attendances of %s: %w", p.Key(), err)
		}
		updated += len(rows)
	}

	return results.SuccessResult[rebuildOutcome, string](rebuildOutcome{
		Partitions:   len(partitions),
		UpdatedCount: updated,
	}), nil
}

// partitionsFor builds sorted, de-duplicated partitions for ids. Ids that do
// not form a valid partition are dropped.
func partitionsFor(tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType, ids []string) []rankingdomain.Partition {
	seen := make(map[string]bool, len(ids))
	out := make([]rankingdomain.Partition, 0, len(ids))
	for _, id := range ids {
		p, err := rankingdomain.NewPartition(tenantID, year, scopeType, id)
		if err != nil || seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b rankingdomain.Partition) int {
		return strings.Compare(a.Key(), b.Key())
	})
	return out
}

func toLedgerEntries(rows []attendancedb.ConfirmedAttendance) []rankingdomain.LedgerEntry {
	entries := make([]rankingdomain.LedgerEntry, len(rows))
	for i, r := range rows {
		entries[i] = rankingdomain.LedgerEntry{
			AttendanceID: r.AttendanceID,
			MemberID:     r.MemberID,
			Points:       r.PointsAwarded,
			Miles:        r.Mileage,
			VisitorClass: pointsdomain.ParseVisitorClass(r.VisitorClass),
			ConfirmedAt:  r.ConfirmedAt,
			Member: rankingdomain.MemberScopeAttributes{
				ChapterID: r.ChapterID,
				Country:   r.Country,
				Continent: r.Continent,
			},
		}
	}
	return entries
}

// appliedByScope lists the attendance ids the rebuilt rows account for, per
// scope id.
func appliedByScope(entries []rankingdomain.LedgerEntry, scopeType rankingdomain.ScopeType) map[string][]uuid.UUID {
	out := make(map[string][]uuid.UUID)
	for _, e := range entries {
		if e.AttendanceID == uuid.Nil {
			continue
		}
		if scopeID, ok := rankingdomain.ScopeIDFor(scopeType, e.Member); ok {
			out[scopeID] = append(out[scopeID], e.AttendanceID)
		}
	}
	return out
}

func toSnapshots(p rankingdomain.Partition, standings []rankingdomain.Standing, now time.Time) []*rankingdb.RankingSnapshot {
	rows := make([]*rankingdb.RankingSnapshot, len(standings))
	for i, st := range standings {
		rank := st.Rank
		rows[i] = &rankingdb.RankingSnapshot{
			TenantID:         p.TenantID,
			Year:             p.Year,
			ScopeType:        string(p.Scope.Type),
			ScopeID:          p.Scope.ID,
			MemberID:         st.MemberID,
			TotalPoints:      st.TotalPoints,
			TotalMiles:       st.TotalMiles,
			EventsCount:      st.EventsCount,
			VisitorClass:     string(st.VisitorClass),
			Rank:             &rank,
			LastCalculatedAt: now,
		}
	}
	return rows
}
