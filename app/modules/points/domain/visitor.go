package pointsdomain

import "strings"

// VisitorClass classifies how far a member travelled relative to their home.
type VisitorClass string

const (
	VisitorLocal VisitorClass = "LOCAL"
	// VisitorA is a different country on the same continent.
	VisitorA VisitorClass = "VISITOR_A"
	// VisitorB is a different continent.
	VisitorB VisitorClass = "VISITOR_B"
)

// Valid reports whether c is one of the known classes.
func (c VisitorClass) Valid() bool {
	switch c {
	case VisitorLocal, VisitorA, VisitorB:
		return true
	}
	return false
}

// ParseVisitorClass parses s case-insensitively, returning LOCAL for
// anything it does not recognize.
func ParseVisitorClass(s string) VisitorClass {
	c := VisitorClass(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return VisitorLocal
}

// Location is a country/continent pair. Blank fields are unknown.
type Location struct {
	Country   string
	Continent string
}

// ClassifyVisitor compares the member's home with the event location and
// returns the class plus the reason used in calculation traces.
//
// When both countries are known and differ but either continent is unknown,
// the result is VisitorA.
func ClassifyVisitor(member, event Location) (VisitorClass, string) {
	memberCountry := strings.TrimSpace(member.Country)
	eventCountry := strings.TrimSpace(event.Country)
	if memberCountry == "" || eventCountry == "" {
		return VisitorLocal, "country unknown"
	}
	if strings.EqualFold(memberCountry, eventCountry) {
		return VisitorLocal, "same country"
	}

	memberContinent := strings.TrimSpace(member.Continent)
	eventContinent := strings.TrimSpace(event.Continent)
	if memberContinent != "" && eventContinent != "" {
		if strings.EqualFold(memberContinent, eventContinent) {
			return VisitorA, "same continent"
		}
		return VisitorB, "different continent"
	}
	return VisitorA, "continent unknown"
}
