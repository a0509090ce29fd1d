package pointsdomain

// EventClass grades an event from 1 (local ride) to 5 (international rally).
type EventClass int

const (
	MinEventClass EventClass = 1
	MaxEventClass EventClass = 5
)

// Valid reports whether c is within 1..5.
func (c EventClass) Valid() bool {
	return c >= MinEventClass && c <= MaxEventClass
}

// Tunables holds the constants the calculator reads from configuration.
type Tunables struct {
	ClassPoints             map[EventClass]int
	LowerThresholdMiles     float64
	UpperThresholdMiles     float64
	SameContinentBonus      int
	DifferentContinentBonus int
}

// Distance tier awards. The thresholds are tunable, the awards are not.
const (
	LowerTierPoints = 1
	UpperTierPoints = 2
)

// DefaultTunables returns the values used when configuration is absent.
func DefaultTunables() Tunables {
	return Tunables{
		ClassPoints: map[EventClass]int{
			1: 1,
			2: 3,
			3: 5,
			4: 10,
			5: 15,
		},
		LowerThresholdMiles:     200,
		UpperThresholdMiles:     800,
		SameContinentBonus:      1,
		DifferentContinentBonus: 2,
	}
}

// classPoints returns the base points for class; unknown classes use class 1.
func (t Tunables) classPoints(class EventClass) (int, EventClass) {
	if !class.Valid() {
		class = MinEventClass
	}
	if v, ok := t.ClassPoints[class]; ok {
		return v, class
	}
	return DefaultTunables().ClassPoints[class], class
}
