package attendancedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository reads the attendance ledger. The ledger is written by the
// evidence review workflow; nothing here mutates it.
type Repository interface {
	// ListConfirmed returns the tenant's confirmed attendances for events
	// starting in year, oldest confirmation first.
	ListConfirmed(ctx context.Context, db bun.IDB, tenantID uuid.UUID, year int) ([]ConfirmedAttendance, error)

	// ListTenantsWithConfirmed returns every tenant with at least one confirmed
	// attendance for an event starting in year.
	ListTenantsWithConfirmed(ctx context.Context, db bun.IDB, year int) ([]uuid.UUID, error)
}
