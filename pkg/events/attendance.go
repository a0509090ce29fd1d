// Package events defines the topics and payloads exchanged over the event bus.
package events

import "time"

const (
	// AttendanceConfirmedV1 is emitted by the evidence review workflow when an
	// attendance is approved and its points have been awarded.
	AttendanceConfirmedV1 = "attendance.confirmed.v1"
)

// AttendanceConfirmedPayloadV1 describes one approved attendance together with
// the member attributes that decide which ranking scopes it counts toward.
type AttendanceConfirmedPayloadV1 struct {
	TenantID      string    `json:"tenant_id"`
	AttendanceID  string    `json:"attendance_id"`
	EventID       string    `json:"event_id"`
	MemberID      string    `json:"member_id"`
	Year          int       `json:"year"`
	PointsAwarded int       `json:"points_awarded"`
	MilesRecorded float64   `json:"miles_recorded"`
	VisitorClass  string    `json:"visitor_class"`
	ChapterID     string    `json:"chapter_id,omitempty"`
	Country       string    `json:"country,omitempty"`
	Continent     string    `json:"continent,omitempty"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}
