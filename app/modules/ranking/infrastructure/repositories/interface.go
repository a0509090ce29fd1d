package rankingdb

import (
	"context"

	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists ranking snapshots. Every method accepts an optional
// bun.IDB so callers can run several calls in one transaction; nil uses the
// repository's default connection.
type Repository interface {
	// LockPartition takes a transaction-scoped advisory lock on the partition
	// key. It only serializes anything when db is a transaction.
	LockPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) error

	// MarkApplied records that attendanceID was added to the partition. It
	// returns false when the attendance was already recorded there.
	MarkApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceID uuid.UUID) (bool, error)

	// ResetApplied replaces the partition's applied attendances with
	// attendanceIDs.
	ResetApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceIDs []uuid.UUID) error

	// UpsertIncrement creates the row, or adds the row's points, miles and
	// events count to the existing one and overwrites its visitor class.
	// It returns the stored row after the change.
	UpsertIncrement(ctx context.Context, db bun.IDB, row *RankingSnapshot) (*RankingSnapshot, error)

	// CountAhead counts rows in the partition with strictly more points.
	CountAhead(ctx context.Context, db bun.IDB, p rankingdomain.Partition, points int) (int, error)

	// SetRank stores rank on the member's row. Returns ErrNoRowsAffected if
	// the row does not exist.
	SetRank(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID, rank int) error

	// GetMember returns the member's row or ErrNotFound.
	GetMember(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID) (*RankingSnapshot, error)

	// ListPartition returns a page ordered by points desc, miles desc.
	ListPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition, skip, take int) ([]RankingSnapshot, error)

	// CountPartition counts the rows in the partition.
	CountPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int, error)

	// ListScopeIDs returns the distinct scope ids stored for a scope type.
	ListScopeIDs(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]string, error)

	// DeletePartition removes every row of the partition and returns how many
	// rows were deleted.
	DeletePartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int64, error)

	// BulkInsert inserts rows in batches.
	BulkInsert(ctx context.Context, db bun.IDB, rows []*RankingSnapshot) error
}
