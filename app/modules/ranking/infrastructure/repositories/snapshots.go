package rankingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const insertBatchSize = 500

// Impl implements Repository using bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a ranking snapshot repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// wherePartition scopes q to the partition's rows.
func wherePartition(q *bun.SelectQuery, p rankingdomain.Partition) *bun.SelectQuery {
	return q.
		Where("rs.tenant_id = ?", p.TenantID).
		Where("rs.year = ?", p.Year).
		Where("rs.scope_type = ?", string(p.Scope.Type)).
		Where("rs.scope_id = ?", p.Scope.ID)
}

func (r *Impl) LockPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) error {
	db = r.resolveDB(db)
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", p.Key()); err != nil {
		return fmt.Errorf("rankingdb.LockPartition: %w", err)
	}
	return nil
}

func (r *Impl) MarkApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(&AppliedAttendance{
			TenantID:     p.TenantID,
			AttendanceID: attendanceID,
			Year:         p.Year,
			ScopeType:    string(p.Scope.Type),
			ScopeID:      p.Scope.ID,
			AppliedAt:    time.Now().UTC(),
		}).
		On("CONFLICT (tenant_id, attendance_id, scope_type, scope_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rankingdb.MarkApplied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rankingdb.MarkApplied: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) ResetApplied(ctx context.Context, db bun.IDB, p rankingdomain.Partition, attendanceIDs []uuid.UUID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*AppliedAttendance)(nil)).
		Where("tenant_id = ?", p.TenantID).
		Where("year = ?", p.Year).
		Where("scope_type = ?", string(p.Scope.Type)).
		Where("scope_id = ?", p.Scope.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rankingdb.ResetApplied: %w", err)
	}
	if len(attendanceIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	marks := make([]*AppliedAttendance, len(attendanceIDs))
	for i, id := range attendanceIDs {
		marks[i] = &AppliedAttendance{
			TenantID:     p.TenantID,
			AttendanceID: id,
			Year:         p.Year,
			ScopeType:    string(p.Scope.Type),
			ScopeID:      p.Scope.ID,
			AppliedAt:    now,
		}
	}
	for start := 0; start < len(marks); start += insertBatchSize {
		batch := marks[start:min(start+insertBatchSize, len(marks))]
		_, err := db.NewInsert().
			Model(&batch).
			On("CONFLICT (tenant_id, attendance_id, scope_type, scope_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("rankingdb.ResetApplied: %w", err)
		}
	}
	return nil
}

func (r *Impl) UpsertIncrement(ctx context.Context, db bun.IDB, row *RankingSnapshot) (*RankingSnapshot, error) {
	db = r.resolveDB(db)
	if row.LastCalculatedAt.IsZero() {
		row.LastCalculatedAt = time.Now().UTC()
	}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (tenant_id, year, scope_type, scope_id, member_id) DO UPDATE").
		Set("total_points = ?TableAlias.total_points + EXCLUDED.total_points").
		Set("total_miles = ?TableAlias.total_miles + EXCLUDED.total_miles").
		Set("events_count = ?TableAlias.events_count + EXCLUDED.events_count").
		Set("visitor_class = EXCLUDED.visitor_class").
		Set("last_calculated_at = EXCLUDED.last_calculated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.UpsertIncrement: %w", err)
	}
	return row, nil
}

func (r *Impl) CountAhead(ctx context.Context, db bun.IDB, p rankingdomain.Partition, points int) (int, error) {
	db = r.resolveDB(db)
	n, err := wherePartition(db.NewSelect().Model((*RankingSnapshot)(nil)), p).
		Where("rs.total_points > ?", points).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("rankingdb.CountAhead: %w", err)
	}
	return n, nil
}

func (r *Impl) SetRank(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID, rank int) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*RankingSnapshot)(nil)).
		Set("rank = ?", rank).
		Where("tenant_id = ?", p.TenantID).
		Where("year = ?", p.Year).
		Where("scope_type = ?", string(p.Scope.Type)).
		Where("scope_id = ?", p.Scope.ID).
		Where("member_id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rankingdb.SetRank: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rankingdb.SetRank: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) GetMember(ctx context.Context, db bun.IDB, p rankingdomain.Partition, memberID uuid.UUID) (*RankingSnapshot, error) {
	db = r.resolveDB(db)
	row := new(RankingSnapshot)
	err := wherePartition(db.NewSelect().Model(row), p).
		Where("rs.member_id = ?", memberID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rankingdb.GetMember: %w", err)
	}
	return row, nil
}

func (r *Impl) ListPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition, skip, take int) ([]RankingSnapshot, error) {
	db = r.resolveDB(db)
	var rows []RankingSnapshot
	err := wherePartition(db.NewSelect().Model(&rows), p).
		OrderExpr("rs.total_points DESC, rs.total_miles DESC, rs.member_id ASC").
		Offset(skip).
		Limit(take).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.ListPartition: %w", err)
	}
	return rows, nil
}

func (r *Impl) CountPartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int, error) {
	db = r.resolveDB(db)
	n, err := wherePartition(db.NewSelect().Model((*RankingSnapshot)(nil)), p).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("rankingdb.CountPartition: %w", err)
	}
	return n, nil
}

func (r *Impl) ListScopeIDs(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int, scopeType rankingdomain.ScopeType) ([]string, error) {
	db = r.resolveDB(db)
	var ids []string
	err := db.NewSelect().
		Model((*RankingSnapshot)(nil)).
		ColumnExpr("DISTINCT rs.scope_id").
		Where("rs.tenant_id = ?", tenantID).
		Where("rs.year = ?", year).
		Where("rs.scope_type = ?", string(scopeType)).
		OrderExpr("rs.scope_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.ListScopeIDs: %w", err)
	}
	return ids, nil
}

func (r *Impl) DeletePartition(ctx context.Context, db bun.IDB, p rankingdomain.Partition) (int64, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*RankingSnapshot)(nil)).
		Where("tenant_id = ?", p.TenantID).
		Where("year = ?", p.Year).
		Where("scope_type = ?", string(p.Scope.Type)).
		Where("scope_id = ?", p.Scope.ID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rankingdb.DeletePartition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rankingdb.DeletePartition: %w", err)
	}
	return n, nil
}

func (r *Impl) BulkInsert(ctx context.Context, db bun.IDB, rows []*RankingSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		batch := rows[start:end]
		if _, err := db.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("rankingdb.BulkInsert: %w", err)
		}
	}
	return nil
}
