package rankingservice

import (
	"context"
	"errors"
	"testing"
	"time"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func confirmed(member uuid.UUID, points int, miles float64, country string, at time.Time) attendancedb.ConfirmedAttendance {
	return attendancedb.ConfirmedAttendance{
		AttendanceID:  uuid.New(),
		TenantID:      testTenant,
		EventID:       uuid.New(),
		MemberID:      member,
		PointsAwarded: points,
		VisitorClass:  "LOCAL",
		ConfirmedAt:   at,
		Mileage:       miles,
		EventYear:     2026,
		Country:       country,
		Continent:     "South America",
	}
}

func TestRebuild_ReplacesPartition(t *testing.T) {
	memberA, memberB, memberC := uuid.New(), uuid.New(), uuid.New()
	stale := uuid.New()
	day := testNow.AddDate(0, -2, 0)

	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(
		confirmed(memberA, 3, 100, "CO", day),
		confirmed(memberA, 2, 50, "CO", day.Add(time.Hour)),
		confirmed(memberB, 5, 300, "CO", day),
		confirmed(memberC, 5, 90, "EC", day),
	)
	snapshots := NewFakeSnapshotRepo()
	_, _ = snapshots.UpsertIncrement(context.Background(), nil, &rankingdb.RankingSnapshot{
		TenantID: testTenant, Year: 2026, ScopeType: "GLOBAL", ScopeID: "GLOBAL",
		MemberID: stale, TotalPoints: 99, EventsCount: 9,
	})
	svc := newTestService(snapshots, ledger)

	got := svc.Rebuild(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "")
	require.True(t, got.Success, got.Message)
	assert.Equal(t, 3, got.UpdatedCount)
	assert.GreaterOrEqual(t, got.ElapsedMs, int64(0))

	rows := snapshots.Rows(globalPartition(t))
	require.Len(t, rows, 3)

	// A and B tie on points; B has more miles.
	assert.Equal(t, memberB, rows[0].MemberID)
	assert.Equal(t, memberA, rows[1].MemberID)
	assert.Equal(t, memberC, rows[2].MemberID)
	for i, row := range rows {
		require.NotNil(t, row.Rank)
		assert.Equal(t, i+1, *row.Rank)
		assert.Equal(t, testNow, row.LastCalculatedAt)
	}
	assert.Equal(t, 5, rows[1].TotalPoints)
	assert.Equal(t, 2, rows[1].EventsCount)
	assert.InDelta(t, 150.0, rows[1].TotalMiles, 1e-9)
}

func TestRebuild_EmptyLedgerClearsPartition(t *testing.T) {
	snapshots := NewFakeSnapshotRepo()
	_, _ = snapshots.UpsertIncrement(context.Background(), nil, &rankingdb.RankingSnapshot{
		TenantID: testTenant, Year: 2026, ScopeType: "GLOBAL", ScopeID: "GLOBAL",
		MemberID: uuid.New(), TotalPoints: 7, EventsCount: 1,
	})
	svc := newTestService(snapshots, NewFakeLedgerRepo())

	got := svc.Rebuild(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, rankingdomain.GlobalScopeID)
	require.True(t, got.Success, got.Message)
	assert.Zero(t, got.UpdatedCount)
	assert.Empty(t, snapshots.Rows(globalPartition(t)))
}

func TestRebuild_WholeScopeType(t *testing.T) {
	memberA, memberB := uuid.New(), uuid.New()
	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(
		confirmed(memberA, 3, 100, "CO", testNow),
		confirmed(memberB, 1, 10, "EC", testNow),
	)
	snapshots := NewFakeSnapshotRepo()
	// A country that no longer has confirmed attendances.
	_, _ = snapshots.UpsertIncrement(context.Background(), nil, &rankingdb.RankingSnapshot{
		TenantID: testTenant, Year: 2026, ScopeType: "COUNTRY", ScopeID: "PE",
		MemberID: uuid.New(), TotalPoints: 2, EventsCount: 1,
	})
	svc := newTestService(snapshots, ledger)

	got := svc.Rebuild(context.Background(), testTenant, 2026, rankingdomain.ScopeCountry, "")
	require.True(t, got.Success, got.Message)
	assert.Equal(t, 2, got.UpdatedCount)
	assert.Contains(t, got.Message, "3 COUNTRY partitions")

	ids, err := snapshots.ListScopeIDs(context.Background(), nil, testTenant, 2026, rankingdomain.ScopeCountry)
	require.NoError(t, err)
	assert.Equal(t, []string{"CO", "EC"}, ids)
	assert.Zero(t, svc.locks.held())
}

func TestRebuild_Failures(t *testing.T) {
	tests := []struct {
		name        string
		tenant      uuid.UUID
		year        int
		scopeType   rankingdomain.ScopeType
		scopeID     string
		setup       func(s *FakeSnapshotRepo, l *FakeLedgerRepo)
		wantMessage string
	}{
		{
			name:        "invalid scope type",
			tenant:      testTenant,
			year:        2026,
			scopeType:   "PLANET",
			wantMessage: "invalid scope type",
		},
		{
			name:        "missing tenant",
			tenant:      uuid.Nil,
			year:        2026,
			scopeType:   rankingdomain.ScopeGlobal,
			wantMessage: rankingdomain.ErrMissingTenant.Error(),
		},
		{
			name:      "ledger read fails",
			tenant:    testTenant,
			year:      2026,
			scopeType: rankingdomain.ScopeGlobal,
			setup: func(s *FakeSnapshotRepo, l *FakeLedgerRepo) {
				l.ListConfirmedFunc = func(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int) ([]attendancedb.ConfirmedAttendance, error) {
					return nil, errors.New("ledger unavailable")
				}
			},
			wantMessage: "failed to read ledger",
		},
		{
			name:      "insert fails",
			tenant:    testTenant,
			year:      2026,
			scopeType: rankingdomain.ScopeCountry,
			scopeID:   "co",
			setup: func(s *FakeSnapshotRepo, l *FakeLedgerRepo) {
				l.ListConfirmedFunc = ledgerOf(confirmed(uuid.New(), 1, 1, "CO", testNow))
				s.BulkInsertFunc = func(ctx context.Context, db bun.IDB, rows []*rankingdb.RankingSnapshot) error {
					return errors.New("disk full")
				}
			},
			wantMessage: "failed to insert partition",
		},
		{
			name:      "stored scope ids unavailable",
			tenant:    testTenant,
			year:      2026,
			scopeType: rankingdomain.ScopeChapter,
			setup: func(s *FakeSnapshotRepo, l *FakeLedgerRepo) {
				s.ListScopeIDsFunc = func(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]string, error) {
					return nil, errors.New("timeout")
				}
			},
			wantMessage: "failed to list stored scope ids",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := NewFakeSnapshotRepo()
			ledger := NewFakeLedgerRepo()
			if tt.setup != nil {
				tt.setup(snapshots, ledger)
			}
			svc := newTestService(snapshots, ledger)

			got := svc.Rebuild(context.Background(), tt.tenant, tt.year, tt.scopeType, tt.scopeID)

			assert.False(t, got.Success)
			assert.Contains(t, got.Message, tt.wantMessage)
			assert.GreaterOrEqual(t, got.ElapsedMs, int64(0))
		})
	}
}

func TestRebuildAll(t *testing.T) {
	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(
		confirmed(uuid.New(), 3, 100, "CO", testNow),
		confirmed(uuid.New(), 1, 10, "EC", testNow),
	)
	svc := newTestService(NewFakeSnapshotRepo(), ledger)

	got := svc.RebuildAll(context.Background(), testTenant, 2026)

	require.True(t, got.Success, got.Message)
	// GLOBAL 2 + CONTINENT 2 + COUNTRY 2 + CHAPTER 0.
	assert.Equal(t, 6, got.UpdatedCount)
}

func TestRebuildAll_ReportsFailingTypes(t *testing.T) {
	snapshots := NewFakeSnapshotRepo()
	snapshots.DeletePartitionFunc = func(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int64, error) {
		if p.Scope.Type == rankingdomain.ScopeContinent {
			return 0, errors.New("deadlock detected")
		}
		return 0, nil
	}
	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(confirmed(uuid.New(), 3, 100, "CO", testNow))
	svc := newTestService(snapshots, ledger)

	got := svc.RebuildAll(context.Background(), testTenant, 2026)

	assert.False(t, got.Success)
	assert.Contains(t, got.Message, "CONTINENT")
	assert.NotContains(t, got.Message, "COUNTRY")
	assert.Equal(t, 2, got.UpdatedCount)
}

// Applying every confirmed attendance incrementally must end with the same
// totals a rebuild computes from the ledger.
func TestRebuild_MatchesIncrementalTotals(t *testing.T) {
	faker := gofakeit.New(42)
	members := make([]uuid.UUID, 12)
	for i := range members {
		members[i] = uuid.New()
	}
	countries := []string{"CO", "EC", "PE", "ES"}
	chapters := []string{"bogota-01", "quito-02", "lima-01"}
	continentOf := map[string]string{"CO": "South America", "EC": "South America", "PE": "South America", "ES": "Europe"}
	homes := make(map[uuid.UUID]rankingdomain.MemberScopeAttributes, len(members))
	for _, m := range members {
		country := countries[faker.IntRange(0, len(countries)-1)]
		homes[m] = rankingdomain.MemberScopeAttributes{
			ChapterID: chapters[faker.IntRange(0, len(chapters)-1)],
			Country:   country,
			Continent: continentOf[country],
		}
	}

	rows := make([]attendancedb.ConfirmedAttendance, 80)
	for i := range rows {
		m := members[faker.IntRange(0, len(members)-1)]
		home := homes[m]
		rows[i] = attendancedb.ConfirmedAttendance{
			AttendanceID:  uuid.New(),
			TenantID:      testTenant,
			EventID:       uuid.New(),
			MemberID:      m,
			PointsAwarded: faker.IntRange(1, 12),
			VisitorClass:  faker.RandomString([]string{"LOCAL", "VISITOR_A", "VISITOR_B"}),
			ConfirmedAt:   faker.DateRange(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)),
			Mileage:       float64(faker.IntRange(0, 1500)),
			EventYear:     2026,
			ChapterID:     home.ChapterID,
			Country:       home.Country,
			Continent:     home.Continent,
		}
	}

	incremental := NewFakeSnapshotRepo()
	incSvc := newTestService(incremental, NewFakeLedgerRepo())
	for _, r := range rows {
		res := incSvc.ApplyConfirmedAttendance(context.Background(), ConfirmedAttendance{
			TenantID:      r.TenantID,
			AttendanceID:  r.AttendanceID,
			EventID:       r.EventID,
			MemberID:      r.MemberID,
			Year:          r.EventYear,
			PointsAwarded: r.PointsAwarded,
			MilesRecorded: r.Mileage,
			VisitorClass:  pointsdomain.ParseVisitorClass(r.VisitorClass),
			Member:        homes[r.MemberID],
			ConfirmedAt:   r.ConfirmedAt,
		})
		require.True(t, res.AllSucceeded())
	}

	rebuilt := NewFakeSnapshotRepo()
	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(rows...)
	rebuildSvc := newTestService(rebuilt, ledger)
	require.True(t, rebuildSvc.RebuildAll(context.Background(), testTenant, 2026).Success)

	for _, scopeType := range rankingdomain.ScopeTypes {
		ids, err := rebuilt.ListScopeIDs(context.Background(), nil, testTenant, 2026, scopeType)
		require.NoError(t, err)
		incIDs, err := incremental.ListScopeIDs(context.Background(), nil, testTenant, 2026, scopeType)
		require.NoError(t, err)
		require.Equal(t, ids, incIDs, scopeType)

		for _, id := range ids {
			p, err := rankingdomain.NewPartition(testTenant, 2026, scopeType, id)
			require.NoError(t, err)
			want := rebuilt.Rows(p)
			got := incremental.Rows(p)
			require.Len(t, got, len(want), p.Key())
			for i := range want {
				assert.Equal(t, want[i].MemberID, got[i].MemberID, p.Key())
				assert.Equal(t, want[i].TotalPoints, got[i].TotalPoints, p.Key())
				assert.Equal(t, want[i].EventsCount, got[i].EventsCount, p.Key())
				assert.InDelta(t, want[i].TotalMiles, got[i].TotalMiles, 1e-6, p.Key())
			}
		}
	}

	// Rebuilding the incrementally maintained store makes ranks sequential.
	ledgerSvc := newTestService(incremental, ledger)
	require.True(t, ledgerSvc.RebuildAll(context.Background(), testTenant, 2026).Success)
	for i, row := range incremental.Rows(globalPartition(t)) {
		require.NotNil(t, row.Rank)
		assert.Equal(t, i+1, *row.Rank)
	}
}

// After a rebuild the partition's applied attendances are exactly the ledger's,
// so a late redelivery of a ledger attendance is not counted twice.
func TestRebuild_ResetsAppliedAttendances(t *testing.T) {
	memberA, memberB := uuid.New(), uuid.New()
	day := testNow.AddDate(0, -1, 0)
	first := confirmed(memberA, 7, 400, "CO", day)
	second := confirmed(memberB, 4, 80, "EC", day)

	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(first, second)
	snapshots := NewFakeSnapshotRepo()
	orphan := uuid.New()
	_, err := snapshots.MarkApplied(context.Background(), nil, globalPartition(t), orphan)
	require.NoError(t, err)
	svc := newTestService(snapshots, ledger)

	got := svc.Rebuild(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "")
	require.True(t, got.Success, got.Message)
	assert.ElementsMatch(t, []uuid.UUID{first.AttendanceID, second.AttendanceID}, snapshots.Applied(globalPartition(t)))

	redelivered := svc.UpdateIncremental(context.Background(), testTenant, AttendanceConfirmedEvent{
		AttendanceID:  first.AttendanceID,
		MemberID:      memberA,
		EventID:       first.EventID,
		Year:          2026,
		PointsAwarded: 7,
		MilesRecorded: 400,
		ScopeType:     rankingdomain.ScopeGlobal,
		ScopeID:       rankingdomain.GlobalScopeID,
		VisitorClass:  pointsdomain.VisitorLocal,
		ConfirmedAt:   day,
	})
	require.True(t, redelivered.Success, redelivered.Message)
	assert.Equal(t, 7, redelivered.TotalPoints)
	assert.Equal(t, 1, redelivered.NewRank)

	row, err := snapshots.GetMember(context.Background(), nil, globalPartition(t), memberA)
	require.NoError(t, err)
	assert.Equal(t, 7, row.TotalPoints)
	assert.Equal(t, 1, row.EventsCount)
}

func TestRebuild_CancelledContext(t *testing.T) {
	member := uuid.New()
	ledger := NewFakeLedgerRepo()
	ledger.ListConfirmedFunc = ledgerOf(confirmed(member, 9, 10, "CO", testNow))
	snapshots := NewFakeSnapshotRepo()
	_, _ = snapshots.UpsertIncrement(context.Background(), nil, &rankingdb.RankingSnapshot{
		TenantID: testTenant, Year: 2026, ScopeType: "GLOBAL", ScopeID: "GLOBAL",
		MemberID: member, TotalPoints: 3, EventsCount: 1,
	})
	svc := newTestService(snapshots, ledger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := svc.Rebuild(ctx, testTenant, 2026, rankingdomain.ScopeGlobal, "")
	assert.False(t, got.Success)
	assert.Contains(t, got.Message, context.Canceled.Error())

	all := svc.RebuildAll(ctx, testTenant, 2026)
	assert.False(t, all.Success)

	trace := snapshots.Trace()
	assert.NotContains(t, trace, "DeletePartition")
	assert.NotContains(t, trace, "BulkInsert")
	assert.NotContains(t, trace, "ResetApplied")
	rows := snapshots.Rows(globalPartition(t))
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TotalPoints)
	assert.Zero(t, svc.locks.held())
}
