package rankingdomain

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	"github.com/google/uuid"
)

// Pagination limits for leaderboard reads.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Standing is one member's aggregate within a partition.
type Standing struct {
	MemberID        uuid.UUID
	TotalPoints     int
	TotalMiles      float64
	EventsCount     int
	VisitorClass    pointsdomain.VisitorClass
	LastConfirmedAt time.Time
	Rank            int
}

// LedgerEntry is one confirmed attendance as seen by the aggregator.
type LedgerEntry struct {
	AttendanceID uuid.UUID
	MemberID     uuid.UUID
	Points       int
	Miles        float64
	VisitorClass pointsdomain.VisitorClass
	ConfirmedAt  time.Time
	Member       MemberScopeAttributes
}

// CompareStandings orders by points desc, then miles desc, then member id so
// that equal aggregates still sort deterministically.
func CompareStandings(a, b Standing) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.TotalMiles, a.TotalMiles); c != 0 {
		return c
	}
	return bytes.Compare(a.MemberID[:], b.MemberID[:])
}

// AssignSequentialRanks sorts a copy of standings and numbers it 1..n with no
// shared ranks.
func AssignSequentialRanks(standings []Standing) []Standing {
	ranked := slices.Clone(standings)
	slices.SortFunc(ranked, CompareStandings)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// CompetitionRank is the rank of a member with membersAhead strictly higher
// point totals. Members with equal points share a rank.
func CompetitionRank(membersAhead int) int {
	return membersAhead + 1
}

// ClampPage normalizes skip/take for leaderboard reads.
func ClampPage(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = DefaultPageSize
	}
	if take > MaxPageSize {
		take = MaxPageSize
	}
	return skip, take
}

// later reports whether a was confirmed after b, using the attendance id to
// break ties between identical timestamps.
func later(a, b LedgerEntry) bool {
	if !a.ConfirmedAt.Equal(b.ConfirmedAt) {
		return a.ConfirmedAt.After(b.ConfirmedAt)
	}
	return bytes.Compare(a.AttendanceID[:], b.AttendanceID[:]) > 0
}

// Aggregate groups entries by scope id (for scopeType) and member, producing
// sequentially ranked standings per scope id. Entries whose member has no
// value for scopeType are skipped. The result does not depend on the order
// of entries.
func Aggregate(entries []LedgerEntry, scopeType ScopeType) map[string][]Standing {
	type key struct {
		scopeID  string
		memberID uuid.UUID
	}
	type acc struct {
		standing Standing
		latest   LedgerEntry
	}

	// Summing in a fixed order keeps float mileage totals stable.
	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b LedgerEntry) int {
		if c := a.ConfirmedAt.Compare(b.ConfirmedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.AttendanceID[:], b.AttendanceID[:])
	})

	byKey := make(map[key]*acc)
	for _, e := range ordered {
		scopeID, ok := ScopeIDFor(scopeType, e.Member)
		if !ok {
			continue
		}
		k := key{scopeID: scopeID, memberID: e.MemberID}
		a, exists := byKey[k]
		if !exists {
			a = &acc{standing: Standing{MemberID: e.MemberID}, latest: e}
			byKey[k] = a
		} else if later(e, a.latest) {
			a.latest = e
		}
		a.standing.TotalPoints += e.Points
		a.standing.TotalMiles += e.Miles
		a.standing.EventsCount++
	}

	out := make(map[string][]Standing)
	for k, a := range byKey {
		a.standing.VisitorClass = a.latest.VisitorClass
		a.standing.LastConfirmedAt = a.latest.ConfirmedAt
		out[k.scopeID] = append(out[k.scopeID], a.standing)
	}
	for scopeID, standings := range out {
		out[scopeID] = AssignSequentialRanks(standings)
	}
	return out
}
