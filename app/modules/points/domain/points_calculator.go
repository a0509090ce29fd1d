package pointsdomain

import (
	"fmt"
	"strings"
)

// AttendanceInput is everything the calculator looks at for one attendance.
type AttendanceInput struct {
	Mileage    float64
	EventClass EventClass
	Member     Location
	Event      Location
}

// PointsCalculation is the breakdown of points awarded for one attendance.
type PointsCalculation struct {
	PointsPerEvent        int
	PointsPerDistance     int
	VisitorBonus          int
	VisitorClassification VisitorClass
	TotalPoints           int
	Trace                 string
}

// CalculatePoints scores one attendance. It is deterministic and total: every
// input, including blank locations and out-of-range classes, yields a result.
func CalculatePoints(in AttendanceInput, t Tunables) PointsCalculation {
	base, appliedClass := t.classPoints(in.EventClass)
	distance, distanceReason := DistancePoints(in.Mileage, t)
	visitor, visitorReason := ClassifyVisitor(in.Member, in.Event)
	bonus := VisitorBonus(visitor, t)

	total := base + distance + bonus

	var b strings.Builder
	fmt.Fprintf(&b, "class=%d", in.EventClass)
	if appliedClass != in.EventClass {
		fmt.Fprintf(&b, " (as class %d)", appliedClass)
	}
	fmt.Fprintf(&b, " base=%d; mileage=%.2f distance=+%d (%s); visitor=%s bonus=+%d (%s); total=%d",
		base, in.Mileage, distance, distanceReason, visitor, bonus, visitorReason, total)

	return PointsCalculation{
		PointsPerEvent:        base,
		PointsPerDistance:     distance,
		VisitorBonus:          bonus,
		VisitorClassification: visitor,
		TotalPoints:           total,
		Trace:                 b.String(),
	}
}

// DistancePoints applies the mileage tiers. Thresholds are exclusive: mileage
// exactly at a threshold does not reach that tier.
func DistancePoints(mileage float64, t Tunables) (int, string) {
	switch {
	case mileage > t.UpperThresholdMiles:
		return UpperTierPoints, fmt.Sprintf(">%g", t.UpperThresholdMiles)
	case mileage > t.LowerThresholdMiles:
		return LowerTierPoints, fmt.Sprintf(">%g", t.LowerThresholdMiles)
	default:
		return 0, fmt.Sprintf("<=%g", t.LowerThresholdMiles)
	}
}

// VisitorBonus returns the bonus for class.
func VisitorBonus(class VisitorClass, t Tunables) int {
	switch class {
	case VisitorA:
		return t.SameContinentBonus
	case VisitorB:
		return t.DifferentContinentBonus
	default:
		return 0
	}
}
