package rankingservice

import (
	"cmp"
	"context"
	"slices"
	"sync"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Snapshot Repo
// ------------------------

// FakeSnapshotRepo keeps rows in memory. Setting a Func overrides the
// in-memory behavior for that method.
type FakeSnapshotRepo struct {
	mu      sync.Mutex
	trace   []string
	rows    map[string]map[uuid.UUID]*rankingdb.RankingSnapshot
	applied map[string]map[uuid.UUID]bool

	LockPartitionFunc   func(ctx context.Context, db bun.IDB, p rankingdomain.Partition) error
	MarkAppliedFunc     func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceID uuid.UUID) (bool, error)
	ResetAppliedFunc    func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceIDs []uuid.UUID) error
	UpsertIncrementFunc func(ctx context.Context, db bun.IDB, row *rankingdb.RankingSnapshot) (*rankingdb.RankingSnapshot, error)
	CountAheadFunc      func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, points int) (int, error)
	SetRankFunc         func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID, rank int) error
	GetMemberFunc       func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID) (*rankingdb.RankingSnapshot, error)
	ListPartitionFunc   func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, skip, take int) ([]rankingdb.RankingSnapshot, error)
	CountPartitionFunc  func(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int, error)
	ListScopeIDsFunc    func(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]string, error)
	DeletePartitionFunc func(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int64, error)
	BulkInsertFunc      func(ctx context.Context, db bun.IDB, rows []*rankingdb.RankingSnapshot) error
}

func NewFakeSnapshotRepo() *FakeSnapshotRepo {
	return &FakeSnapshotRepo{
		trace:   []string{},
		rows:    make(map[string]map[uuid.UUID]*rankingdb.RankingSnapshot),
		applied: make(map[string]map[uuid.UUID]bool),
	}
}

func (f *FakeSnapshotRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func rowPartition(row *rankingdb.RankingSnapshot) rankingdomain.Partition {
	return rankingdomain.Partition{
		TenantID: row.TenantID,
		Year:     row.Year,
		Scope:    rankingdomain.Scope{Type: rankingdomain.ScopeType(row.ScopeType), ID: row.ScopeID},
	}
}

// sortedRows returns copies of the partition's rows ordered like the
// database query.
func (f *FakeSnapshotRepo) sortedRows(p rankingdomain.Partition) []rankingdb.RankingSnapshot {
	out := make([]rankingdb.RankingSnapshot, 0, len(f.rows[p.Key()]))
	for _, r := range f.rows[p.Key()] {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b rankingdb.RankingSnapshot) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalMiles, a.TotalMiles); c != 0 {
			return c
		}
		return cmp.Compare(a.MemberID.String(), b.MemberID.String())
	})
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeSnapshotRepo) LockPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) error {
	f.record("LockPartition")
	if f.LockPartitionFunc != nil {
		return f.LockPartitionFunc(ctx, db, p)
	}
	return nil
}

func (f *FakeSnapshotRepo) MarkApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceID uuid.UUID) (bool, error) {
	f.record("MarkApplied")
	if f.MarkAppliedFunc != nil {
		return f.MarkAppliedFunc(ctx, db, p, attendanceID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applied[p.Key()] == nil {
		f.applied[p.Key()] = make(map[uuid.UUID]bool)
	}
	if f.applied[p.Key()][attendanceID] {
		return false, nil
	}
	f.applied[p.Key()][attendanceID] = true
	return true, nil
}

func (f *FakeSnapshotRepo) ResetApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceIDs []uuid.UUID) error {
	f.record("ResetApplied")
	if f.ResetAppliedFunc != nil {
		return f.ResetAppliedFunc(ctx, db, p, attendanceIDs)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	marks := make(map[uuid.UUID]bool, len(attendanceIDs))
	for _, id := range attendanceIDs {
		marks[id] = true
	}
	f.applied[p.Key()] = marks
	return nil
}

func (f *FakeSnapshotRepo) UpsertIncrement(ctx context.Context, db bun.IDB, row *rankingdb.RankingSnapshot) (*rankingdb.RankingSnapshot, error) {
	f.record("UpsertIncrement")
	if f.UpsertIncrementFunc != nil {
		return f.UpsertIncrementFunc(ctx, db, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rowPartition(row).Key()
	if f.rows[key] == nil {
		f.rows[key] = make(map[uuid.UUID]*rankingdb.RankingSnapshot)
	}
	existing, ok := f.rows[key][row.MemberID]
	if !ok {
		stored := *row
		f.rows[key][row.MemberID] = &stored
		out := stored
		return &out, nil
	}
	existing.TotalPoints += row.TotalPoints
	existing.TotalMiles += row.TotalMiles
	existing.EventsCount += row.EventsCount
	existing.VisitorClass = row.VisitorClass
	existing.LastCalculatedAt = row.LastCalculatedAt
	out := *existing
	return &out, nil
}

func (f *FakeSnapshotRepo) CountAhead(ctx context.Context, db bun.IDB, p rankingdomain.Partition, points int) (int, error) {
	f.record("CountAhead")
	if f.CountAheadFunc != nil {
		return f.CountAheadFunc(ctx, db, p, points)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows[p.Key()] {
		if r.TotalPoints > points {
			n++
		}
	}
	return n, nil
}

func (f *FakeSnapshotRepo) SetRank(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID, rank int) error {
	f.record("SetRank")
	if f.SetRankFunc != nil {
		return f.SetRankFunc(ctx, db, p, memberID, rank)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[p.Key()][memberID]
	if !ok {
		return rankingdb.ErrNoRowsAffected
	}
	r.Rank = &rank
	return nil
}

func (f *FakeSnapshotRepo) GetMember(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID) (*rankingdb.RankingSnapshot, error) {
	f.record("GetMember")
	if f.GetMemberFunc != nil {
		return f.GetMemberFunc(ctx, db, p, memberID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[p.Key()][memberID]
	if !ok {
		return nil, rankingdb.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *FakeSnapshotRepo) ListPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition, skip, take int) ([]rankingdb.RankingSnapshot, error) {
	f.record("ListPartition")
	if f.ListPartitionFunc != nil {
		return f.ListPartitionFunc(ctx, db, p, skip, take)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.sortedRows(p)
	if skip >= len(rows) {
		return []rankingdb.RankingSnapshot{}, nil
	}
	return rows[skip:min(skip+take, len(rows))], nil
}

func (f *FakeSnapshotRepo) CountPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int, error) {
	f.record("CountPartition")
	if f.CountPartitionFunc != nil {
		return f.CountPartitionFunc(ctx, db, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[p.Key()]), nil
}

func (f *FakeSnapshotRepo) ListScopeIDs(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]string, error) {
	f.record("ListScopeIDs")
	if f.ListScopeIDsFunc != nil {
		return f.ListScopeIDsFunc(ctx, db, tenantID, year, scopeType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, members := range f.rows {
		for _, r := range members {
			if r.TenantID == tenantID && r.Year == year && r.ScopeType == string(scopeType) {
				ids = append(ids, r.ScopeID)
				break
			}
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *FakeSnapshotRepo) DeletePartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int64, error) {
	f.record("DeletePartition")
	if f.DeletePartitionFunc != nil {
		return f.DeletePartitionFunc(ctx, db, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows[p.Key()]))
	delete(f.rows, p.Key())
	return n, nil
}

func (f *FakeSnapshotRepo) BulkInsert(ctx context.Context, db bun.IDB, rows []*rankingdb.RankingSnapshot) error {
	f.record("BulkInsert")
	if f.BulkInsertFunc != nil {
		return f.BulkInsertFunc(ctx, db, rows)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		key := rowPartition(row).Key()
		if f.rows[key] == nil {
			f.rows[key] = make(map[uuid.UUID]*rankingdb.RankingSnapshot)
		}
		stored := *row
		f.rows[key][row.MemberID] = &stored
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeSnapshotRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Rows returns the partition's rows in leaderboard order.
func (f *FakeSnapshotRepo) Rows(p rankingdomain.Partition) []rankingdb.RankingSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedRows(p)
}

// Applied returns the partition's applied attendance ids.
func (f *FakeSnapshotRepo) Applied(p rankingdomain.Partition) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, 0, len(f.applied[p.Key()]))
	for id := range f.applied[p.Key()] {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	return out
}

var _ rankingdb.Repository = (*FakeSnapshotRepo)(nil)

// ------------------------
// Fake Ledger Repo
// ------------------------

type FakeLedgerRepo struct {
	mu    sync.Mutex
	trace []string

	ListConfirmedFunc            func(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int) ([]attendancedb.ConfirmedAttendance, error)
	ListTenantsWithConfirmedFunc func(ctx context.Context, db bun.IDB, year int) ([]uuid.UUID, error)
}

func NewFakeLedgerRepo() *FakeLedgerRepo {
	return &FakeLedgerRepo{trace: []string{}}
}

func (f *FakeLedgerRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeLedgerRepo) ListConfirmed(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int) ([]attendancedb.ConfirmedAttendance, error) {
	f.record("ListConfirmed")
	if f.ListConfirmedFunc != nil {
		return f.ListConfirmedFunc(ctx, db, tenantID, year)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) ListTenantsWithConfirmed(ctx context.Context, db bun.IDB, year int) ([]uuid.UUID, error) {
	f.record("ListTenantsWithConfirmed")
	if f.ListTenantsWithConfirmedFunc != nil {
		return f.ListTenantsWithConfirmedFunc(ctx, db, year)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ attendancedb.Repository = (*FakeLedgerRepo)(nil)

// ledgerOf serves a fixed ledger, filtered by tenant.
func ledgerOf(rows ...attendancedb.ConfirmedAttendance) func(context.Context, bun.IDB, uuid.UUID, int) ([]attendancedb.ConfirmedAttendance, error) {
	return func(_ context.Context, _ bun.IDB, tenantID uuid.UUID, year int) ([]attendancedb.ConfirmedAttendance, error) {
		var out []attendancedb.ConfirmedAttendance
		for _, r := range rows {
			if r.TenantID == tenantID && r.EventYear == year {
				out = append(out, r)
			}
		}
		return out, nil
	}
}
