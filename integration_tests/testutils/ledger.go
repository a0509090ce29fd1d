package testutils

import (
	"context"
	"testing"
	"time"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SeedMember inserts a member of tenantID.
func SeedMember(t *testing.T, db bun.IDB, tenantID uuid.UUID, chapter, country, continent string) uuid.UUID {
	t.Helper()
	m := &attendancedb.Member{
		ID:        uuid.New(),
		TenantID:  tenantID,
		FullName:  "Rider " + chapter,
		ChapterID: chapter,
		Country:   country,
		Continent: continent,
	}
	if _, err := db.NewInsert().Model(m).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	return m.ID
}

// SeedEvent inserts an event starting on start.
func SeedEvent(t *testing.T, db bun.IDB, tenantID uuid.UUID, start time.Time, mileage float64) uuid.UUID {
	t.Helper()
	ev := &attendancedb.Event{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       "Rally " + start.Format("2006-01-02"),
		StartDate:  start,
		Mileage:    mileage,
		EventClass: 1,
	}
	if _, err := db.NewInsert().Model(ev).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return ev.ID
}

// SeedAttendance inserts an attendance record. A nil confirmedAt leaves it
// pending.
func SeedAttendance(t *testing.T, db bun.IDB, tenantID, eventID, memberID uuid.UUID, points int, class string, confirmedAt *time.Time) uuid.UUID {
	t.Helper()
	status := attendancedb.StatusPending
	if confirmedAt != nil {
		status = attendancedb.StatusConfirmed
	}
	rec := &attendancedb.AttendanceRecord{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       eventID,
		MemberID:      memberID,
		Status:        status,
		PointsAwarded: points,
		VisitorClass:  class,
		ConfirmedAt:   confirmedAt,
	}
	if _, err := db.NewInsert().Model(rec).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed attendance: %v", err)
	}
	return rec.ID
}
