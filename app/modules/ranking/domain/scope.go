package rankingdomain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ScopeType is the geographic level a leaderboard covers.
type ScopeType string

const (
	ScopeGlobal    ScopeType = "GLOBAL"
	ScopeContinent ScopeType = "CONTINENT"
	ScopeCountry   ScopeType = "COUNTRY"
	ScopeChapter   ScopeType = "CHAPTER"
)

// GlobalScopeID is the scope id every GLOBAL row carries.
const GlobalScopeID = "GLOBAL"

// MaxScopeIDLength is the longest scope id, in characters, a snapshot row
// can store.
const MaxScopeIDLength = 64

// ScopeTypes lists every scope type, widest first.
var ScopeTypes = []ScopeType{ScopeGlobal, ScopeContinent, ScopeCountry, ScopeChapter}

var (
	ErrInvalidScopeType = errors.New("invalid scope type")
	ErrMissingScopeID   = errors.New("scope id is required")
	ErrScopeIDTooLong   = errors.New("scope id is too long")
	ErrInvalidYear      = errors.New("invalid year")
	ErrMissingTenant    = errors.New("tenant id is required")
)

// ParseScopeType parses s case-insensitively.
func ParseScopeType(s string) (ScopeType, error) {
	t := ScopeType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case ScopeGlobal, ScopeContinent, ScopeCountry, ScopeChapter:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScopeType, s)
}

// Scope identifies one leaderboard within a tenant/year.
type Scope struct {
	Type ScopeType
	ID   string
}

// GlobalScope is the tenant-wide leaderboard.
func GlobalScope() Scope {
	return Scope{Type: ScopeGlobal, ID: GlobalScopeID}
}

// NormalizeScopeID canonicalizes id for t: GLOBAL always maps to
// GlobalScopeID and country codes are upper-cased.
func NormalizeScopeID(t ScopeType, id string) string {
	id = strings.TrimSpace(id)
	switch t {
	case ScopeGlobal:
		return GlobalScopeID
	case ScopeCountry:
		return strings.ToUpper(id)
	default:
		return id
	}
}

// Normalize returns s with a canonical id.
func (s Scope) Normalize() Scope {
	return Scope{Type: s.Type, ID: NormalizeScopeID(s.Type, s.ID)}
}

func (s Scope) String() string {
	return string(s.Type) + ":" + s.ID
}

// MemberScopeAttributes are the member fields that map to scope ids.
type MemberScopeAttributes struct {
	ChapterID string
	Country   string
	Continent string
}

// ScopeIDFor returns the member's scope id for t, or false when the member
// attribute backing t is unknown.
func ScopeIDFor(t ScopeType, attrs MemberScopeAttributes) (string, bool) {
	var raw string
	switch t {
	case ScopeGlobal:
		return GlobalScopeID, true
	case ScopeContinent:
		raw = attrs.Continent
	case ScopeCountry:
		raw = attrs.Country
	case ScopeChapter:
		raw = attrs.ChapterID
	default:
		return "", false
	}
	id := NormalizeScopeID(t, raw)
	return id, id != ""
}

// ScopesFor returns every scope a member's attendance counts toward.
func ScopesFor(attrs MemberScopeAttributes) []Scope {
	scopes := make([]Scope, 0, len(ScopeTypes))
	for _, t := range ScopeTypes {
		if id, ok := ScopeIDFor(t, attrs); ok {
			scopes = append(scopes, Scope{Type: t, ID: id})
		}
	}
	return scopes
}

// Partition is the unit of ranking: one leaderboard of one tenant for one year.
type Partition struct {
	TenantID uuid.UUID
	Year     int
	Scope    Scope
}

// NewPartition builds a validated, normalized partition.
func NewPartition(tenantID uuid.UUID, year int, scopeType ScopeType, scopeID string) (Partition, error) {
	p := Partition{
		TenantID: tenantID,
		Year:     year,
		Scope:    Scope{Type: scopeType, ID: scopeID}.Normalize(),
	}
	return p, p.Validate()
}

// Validate checks tenant, year and scope.
func (p Partition) Validate() error {
	if p.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if p.Year < 1900 || p.Year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	if _, err := ParseScopeType(string(p.Scope.Type)); err != nil {
		return err
	}
	if p.Scope.ID == "" {
		return ErrMissingScopeID
	}
	if n := utf8.RuneCountInString(p.Scope.ID); n > MaxScopeIDLength {
		return fmt.Errorf("%w: %d characters, at most %d", ErrScopeIDTooLong, n, MaxScopeIDLength)
	}
	return nil
}

// Key is the string used for per-partition locking.
func (p Partition) Key() string {
	return fmt.Sprintf("ranking:%s:%d:%s:%s", p.TenantID, p.Year, p.Scope.Type, p.Scope.ID)
}
