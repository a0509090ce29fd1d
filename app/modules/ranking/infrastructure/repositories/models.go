package rankingdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RankingSnapshot is one member's denormalized row in one leaderboard.
// Rank is nil until the first rank computation for the row.
type RankingSnapshot struct {
	bun.BaseModel `bun:"table:ranking_snapshots,alias:rs"`

	ID               int64     `bun:"id,pk,autoincrement"`
	TenantID         uuid.UUID `bun:"tenant_id,type:uuid,notnull"`
	Year             int       `bun:"year,notnull"`
	ScopeType        string    `bun:"scope_type,notnull"`
	ScopeID          string    `bun:"scope_id,notnull"`
	MemberID         uuid.UUID `bun:"member_id,type:uuid,notnull"`
	TotalPoints      int       `bun:"total_points,notnull,default:0"`
	TotalMiles       float64   `bun:"total_miles,notnull,default:0"`
	EventsCount      int       `bun:"events_count,notnull,default:0"`
	VisitorClass     string    `bun:"visitor_class,notnull,default:'LOCAL'"`
	Rank             *int      `bun:"rank"`
	LastCalculatedAt time.Time `bun:"last_calculated_at,nullzero,notnull,default:current_timestamp"`
}

// AppliedAttendance marks one attendance as already added to one partition.
type AppliedAttendance struct {
	bun.BaseModel `bun:"table:ranking_applied_attendances,alias:ra"`

	TenantID     uuid.UUID `bun:"tenant_id,pk,type:uuid"`
	AttendanceID uuid.UUID `bun:"attendance_id,pk,type:uuid"`
	Year         int       `bun:"year,notnull"`
	ScopeType    string    `bun:"scope_type,pk"`
	ScopeID      string    `bun:"scope_id,pk"`
	AppliedAt    time.Time `bun:"applied_at,nullzero,notnull,default:current_timestamp"`
}
