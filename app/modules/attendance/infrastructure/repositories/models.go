package attendancedb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Attendance statuses. Only CONFIRMED rows count toward rankings.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
)

// Event is a ride or rally members can attend.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID         uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID   uuid.UUID `bun:"tenant_id,type:uuid,notnull"`
	Name       string    `bun:"name,notnull"`
	StartDate  time.Time `bun:"start_date,notnull"`
	Mileage    float64   `bun:"mileage,notnull,default:0"`
	EventClass int       `bun:"event_class,notnull,default:1"`
	Country    string    `bun:"country,nullzero"`
	Continent  string    `bun:"continent,nullzero"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Member is an association member. Chapter, country and continent decide
// which ranking scopes their attendances count toward.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID  uuid.UUID `bun:"tenant_id,type:uuid,notnull"`
	FullName  string    `bun:"full_name,notnull"`
	ChapterID string    `bun:"chapter_id,nullzero"`
	Country   string    `bun:"country,nullzero"`
	Continent string    `bun:"continent,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// AttendanceRecord is one member's attendance at one event. Awarded values
// are written once, when the attendance is confirmed.
type AttendanceRecord struct {
	bun.BaseModel `bun:"table:attendance_records,alias:ar"`

	ID                uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID          uuid.UUID  `bun:"tenant_id,type:uuid,notnull"`
	EventID           uuid.UUID  `bun:"event_id,type:uuid,notnull"`
	MemberID          uuid.UUID  `bun:"member_id,type:uuid,notnull"`
	VehicleID         uuid.UUID  `bun:"vehicle_id,type:uuid,nullzero"`
	Status            string     `bun:"status,notnull,default:'PENDING'"`
	PointsPerEvent    int        `bun:"points_per_event,notnull,default:0"`
	PointsPerDistance int        `bun:"points_per_distance,notnull,default:0"`
	PointsAwarded     int        `bun:"points_awarded,notnull,default:0"`
	VisitorClass      string     `bun:"visitor_class,nullzero"`
	ConfirmedAt       *time.Time `bun:"confirmed_at"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ConfirmedAttendance is a confirmed record joined with its event and member.
type ConfirmedAttendance struct {
	AttendanceID  uuid.UUID `bun:"attendance_id"`
	TenantID      uuid.UUID `bun:"tenant_id"`
	EventID       uuid.UUID `bun:"event_id"`
	MemberID      uuid.UUID `bun:"member_id"`
	PointsAwarded int       `bun:"points_awarded"`
	VisitorClass  string    `bun:"visitor_class"`
	ConfirmedAt   time.Time `bun:"confirmed_at"`
	Mileage       float64   `bun:"mileage"`
	EventYear     int       `bun:"event_year"`
	ChapterID     string    `bun:"chapter_id"`
	Country       string    `bun:"country"`
	Continent     string    `bun:"continent"`
}
