package rankingservice

import (
	"time"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/google/uuid"
)

// AttendanceConfirmedEvent applies one confirmed attendance to one scope.
// An event carrying an AttendanceID is applied to a scope at most once.
type AttendanceConfirmedEvent struct {
	AttendanceID  uuid.UUID
	MemberID      uuid.UUID
	EventID       uuid.UUID
	Year          int
	PointsAwarded int
	MilesRecorded float64
	ScopeType     rankingdomain.ScopeType
	ScopeID       string
	VisitorClass  pointsdomain.VisitorClass
	ConfirmedAt   time.Time
}

// RankingUpdateResult reports an incremental update. Failures are reported
// here instead of as errors.
type RankingUpdateResult struct {
	Success     bool
	Message     string
	NewRank     int
	TotalPoints int
	TotalMiles  float64
}

// RankingRebuildResult reports a rebuild. ElapsedMs is set on failure too.
type RankingRebuildResult struct {
	Success      bool
	Message      string
	UpdatedCount int
	ElapsedMs    int64
}

// ConfirmedAttendance is a confirmed attendance with the member attributes
// needed to fan it out to every scope.
type ConfirmedAttendance struct {
	TenantID      uuid.UUID
	AttendanceID  uuid.UUID
	EventID       uuid.UUID
	MemberID      uuid.UUID
	Year          int
	PointsAwarded int
	MilesRecorded float64
	VisitorClass  pointsdomain.VisitorClass
	Member        rankingdomain.MemberScopeAttributes
	ConfirmedAt   time.Time
}

// ScopeUpdate pairs a scope with the outcome of updating it.
type ScopeUpdate struct {
	Scope  rankingdomain.Scope
	Result RankingUpdateResult
}

// AttendanceApplyResult collects the per-scope outcomes of one attendance.
type AttendanceApplyResult struct {
	Scopes []ScopeUpdate
}

// AllSucceeded reports whether every scope was updated.
func (r AttendanceApplyResult) AllSucceeded() bool {
	for _, s := range r.Scopes {
		if !s.Result.Success {
			return false
		}
	}
	return len(r.Scopes) > 0
}

// RankingEntry is one row of a leaderboard as served to readers. Rank is the
// stored rank and is zero when it has not been computed yet. Position is
// computed at read time: the row's offset in a page, or the member's live
// competition rank in a member lookup.
type RankingEntry struct {
	MemberID         uuid.UUID
	Rank             int
	Position         int
	TotalPoints      int
	TotalMiles       float64
	EventsCount      int
	VisitorClass     pointsdomain.VisitorClass
	LastCalculatedAt time.Time
}

// RankingPage is one page of a leaderboard.
type RankingPage struct {
	Partition rankingdomain.Partition
	Skip      int
	Take      int
	Total     int
	Entries   []RankingEntry
}

// MemberRankingResult is a member lookup. Found is false when the member has
// no row in the partition.
type MemberRankingResult struct {
	Found bool
	Entry RankingEntry
}
