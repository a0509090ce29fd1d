package rankingservice

import (
	"context"
	"errors"
	"testing"

	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func seedGlobal(t *testing.T, svc *RankingService, n int) []uuid.UUID {
	t.Helper()
	members := make([]uuid.UUID, n)
	for i := range members {
		members[i] = uuid.New()
		res := svc.UpdateIncremental(context.Background(), testTenant, globalEvent(members[i], (i+1)*2, float64(i)))
		require.True(t, res.Success, res.Message)
	}
	return members
}

func TestGetRanking(t *testing.T) {
	tests := []struct {
		name      string
		seed      int
		skip      int
		take      int
		wantSkip  int
		wantTake  int
		wantLen   int
		wantFirst int
	}{
		{name: "first page", seed: 5, skip: 0, take: 2, wantSkip: 0, wantTake: 2, wantLen: 2, wantFirst: 10},
		{name: "second page", seed: 5, skip: 2, take: 2, wantSkip: 2, wantTake: 2, wantLen: 2, wantFirst: 6},
		{name: "past the end", seed: 3, skip: 10, take: 5, wantSkip: 10, wantTake: 5, wantLen: 0},
		{name: "zero take uses default", seed: 3, skip: 0, take: 0, wantSkip: 0, wantTake: rankingdomain.DefaultPageSize, wantLen: 3, wantFirst: 6},
		{name: "take is capped", seed: 1, skip: -4, take: 1000, wantSkip: 0, wantTake: rankingdomain.MaxPageSize, wantLen: 1, wantFirst: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(NewFakeSnapshotRepo(), NewFakeLedgerRepo())
			seedGlobal(t, svc, tt.seed)

			page, err := svc.GetRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "", tt.skip, tt.take)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSkip, page.Skip)
			assert.Equal(t, tt.wantTake, page.Take)
			assert.Equal(t, tt.seed, page.Total)
			require.Len(t, page.Entries, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Entries[0].TotalPoints)
				assert.Equal(t, tt.wantSkip+1, page.Entries[0].Position)
			}
		})
	}
}

func TestGetRanking_Errors(t *testing.T) {
	t.Run("invalid partition", func(t *testing.T) {
		svc := newTestService(NewFakeSnapshotRepo(), NewFakeLedgerRepo())

		_, err := svc.GetRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeChapter, "", 0, 10)

		assert.ErrorIs(t, err, rankingdomain.ErrMissingScopeID)
	})

	t.Run("storage failure", func(t *testing.T) {
		snapshots := NewFakeSnapshotRepo()
		snapshots.ListPartitionFunc = func(ctx context.Context, db bun.IDB, p rankingdomain.Partition, skip, take int) ([]rankingdb.RankingSnapshot, error) {
			return nil, errors.New("connection refused")
		}
		svc := newTestService(snapshots, NewFakeLedgerRepo())

		_, err := svc.GetRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "", 0, 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "GetRanking: failed to list partition")
	})
}

func TestGetMemberRanking(t *testing.T) {
	svc := newTestService(NewFakeSnapshotRepo(), NewFakeLedgerRepo())
	members := seedGlobal(t, svc, 3)

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetMemberRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "", members[0])
		require.NoError(t, err)
		require.True(t, got.Found)
		assert.Equal(t, members[0], got.Entry.MemberID)
		assert.Equal(t, 2, got.Entry.TotalPoints)
		assert.Equal(t, 3, got.Entry.Position)
	})

	t.Run("not found", func(t *testing.T) {
		got, err := svc.GetMemberRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "", uuid.New())
		require.NoError(t, err)
		assert.False(t, got.Found)
	})

	t.Run("missing member id", func(t *testing.T) {
		_, err := svc.GetMemberRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "", uuid.Nil)
		assert.ErrorIs(t, err, ErrMissingMember)
	})

	t.Run("invalid year", func(t *testing.T) {
		_, err := svc.GetMemberRanking(context.Background(), testTenant, 12, rankingdomain.ScopeGlobal, "", members[0])
		assert.ErrorIs(t, err, rankingdomain.ErrInvalidYear)
	})
}

func TestCountRanking(t *testing.T) {
	svc := newTestService(NewFakeSnapshotRepo(), NewFakeLedgerRepo())
	seedGlobal(t, svc, 4)

	n, err := svc.CountRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeGlobal, "GLOBAL")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = svc.CountRanking(context.Background(), testTenant, 2026, rankingdomain.ScopeCountry, "CO")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.CountRanking(context.Background(), testTenant, 2026, "PLANET", "X")
	assert.ErrorIs(t, err, rankingdomain.ErrInvalidScopeType)
}

func TestListTenantsWithConfirmed(t *testing.T) {
	ledger := NewFakeLedgerRepo()
	ledger.ListTenantsWithConfirmedFunc = func(ctx context.Context, db bun.IDB, year int) ([]uuid.UUID, error) {
		if year != 2026 {
			return nil, nil
		}
		return []uuid.UUID{testTenant}, nil
	}
	svc := newTestService(NewFakeSnapshotRepo(), ledger)

	got, err := svc.ListTenantsWithConfirmed(context.Background(), 2026)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{testTenant}, got)
}
