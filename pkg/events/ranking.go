package events

import "time"

const (
	// RankingUpdatedV1 reports the outcome of applying one confirmed attendance
	// to every scope it belongs to.
	RankingUpdatedV1 = "ranking.updated.v1"

	// RankingRebuildRequestedV1 asks for a rebuild of one scope, or of every
	// scope of a tenant/year when ScopeType is empty.
	RankingRebuildRequestedV1 = "ranking.rebuild.requested.v1"

	// RankingRebuiltV1 reports the outcome of a rebuild.
	RankingRebuiltV1 = "ranking.rebuilt.v1"
)

// ScopeUpdateV1 is the per-scope outcome of an incremental update.
type ScopeUpdateV1 struct {
	ScopeType   string  `json:"scope_type"`
	ScopeID     string  `json:"scope_id"`
	Success     bool    `json:"success"`
	Message     string  `json:"message,omitempty"`
	NewRank     int     `json:"new_rank,omitempty"`
	TotalPoints int     `json:"total_points"`
	TotalMiles  float64 `json:"total_miles"`
}

// RankingUpdatedPayloadV1 is published after an attendance has been applied.
type RankingUpdatedPayloadV1 struct {
	TenantID     string          `json:"tenant_id"`
	MemberID     string          `json:"member_id"`
	AttendanceID string          `json:"attendance_id,omitempty"`
	Year         int             `json:"year"`
	Scopes       []ScopeUpdateV1 `json:"scopes"`
}

// RankingRebuildRequestedPayloadV1 requests a rebuild.
type RankingRebuildRequestedPayloadV1 struct {
	TenantID    string `json:"tenant_id"`
	Year        int    `json:"year"`
	ScopeType   string `json:"scope_type,omitempty"`
	ScopeID     string `json:"scope_id,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// RankingRebuiltPayloadV1 is published when a rebuild finishes, successfully or not.
type RankingRebuiltPayloadV1 struct {
	TenantID     string    `json:"tenant_id"`
	Year         int       `json:"year"`
	ScopeType    string    `json:"scope_type,omitempty"`
	ScopeID      string    `json:"scope_id,omitempty"`
	Success      bool      `json:"success"`
	Message      string    `json:"message,omitempty"`
	UpdatedCount int       `json:"updated_count"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CompletedAt  time.Time `json:"completed_at"`
}
