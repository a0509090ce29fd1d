package attendancedb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository with bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates an attendance ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) ListConfirmed(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int) ([]ConfirmedAttendance, error) {
	db = r.resolveDB(db)
	var rows []ConfirmedAttendance
	err := db.NewSelect().
		TableExpr("attendance_records AS ar").
		ColumnExpr("ar.id AS attendance_id").
		ColumnExpr("ar.tenant_id, ar.event_id, ar.member_id, ar.points_awarded").
		ColumnExpr("COALESCE(ar.visitor_class, 'LOCAL') AS visitor_class").
		ColumnExpr("ar.confirmed_at").
		ColumnExpr("ev.mileage").
		ColumnExpr("EXTRACT(YEAR FROM ev.start_date)::int AS event_year").
		ColumnExpr("COALESCE(m.chapter_id, '') AS chapter_id").
		ColumnExpr("COALESCE(m.country, '') AS country").
		ColumnExpr("COALESCE(m.continent, '') AS continent").
		Join("JOIN events AS ev ON ev.id = ar.event_id AND ev.tenant_id = ar.tenant_id").
		Join("JOIN members AS m ON m.id = ar.member_id AND m.tenant_id = ar.tenant_id").
		Where("ar.tenant_id = ?", tenantID).
		Where("ar.status = ?", StatusConfirmed).
		Where("ar.confirmed_at IS NOT NULL").
		Where("EXTRACT(YEAR FROM ev.start_date)::int = ?", year).
		OrderExpr("ar.confirmed_at ASC, ar.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("attendancedb.ListConfirmed: %w", err)
	}
	return rows, nil
}

func (r *Impl) ListTenantsWithConfirmed(ctx context.Context, db bun.IDB, year int) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var tenants []uuid.UUID
	err := db.NewSelect().
		TableExpr("attendance_records AS ar").
		ColumnExpr("DISTINCT ar.tenant_id").
		Join("JOIN events AS ev ON ev.id = ar.event_id AND ev.tenant_id = ar.tenant_id").
		Where("ar.status = ?", StatusConfirmed).
		Where("EXTRACT(YEAR FROM ev.start_date)::int = ?", year).
		OrderExpr("ar.tenant_id ASC").
		Scan(ctx, &tenants)
	if err != nil {
		return nil, fmt.Errorf("attendancedb.ListTenantsWithConfirmed: %w", err)
	}
	return tenants, nil
}
