package pointsservice

import (
	"fmt"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
)

// Configuration keys read by the calculator.
const (
	KeyClassMultiplierFormat   = "points.class_multiplier.%d"
	KeyLowerThresholdMiles     = "points.distance.lower_threshold_miles"
	KeyUpperThresholdMiles     = "points.distance.upper_threshold_miles"
	KeySameContinentBonus      = "points.visitor.same_continent_bonus"
	KeyDifferentContinentBonus = "points.visitor.different_continent_bonus"
)

// ClassMultiplierKey returns the configuration key for class.
func ClassMultiplierKey(class pointsdomain.EventClass) string {
	return fmt.Sprintf(KeyClassMultiplierFormat, int(class))
}

// TunablesFromSource reads every tunable from src, using the defaults for
// anything missing or malformed.
func TunablesFromSource(src settingsservice.Source) pointsdomain.Tunables {
	t := pointsdomain.DefaultTunables()
	if src == nil {
		return t
	}
	for class := pointsdomain.MinEventClass; class <= pointsdomain.MaxEventClass; class++ {
		t.ClassPoints[class] = src.GetInt(ClassMultiplierKey(class), t.ClassPoints[class])
	}
	t.LowerThresholdMiles = src.GetDouble(KeyLowerThresholdMiles, t.LowerThresholdMiles)
	t.UpperThresholdMiles = src.GetDouble(KeyUpperThresholdMiles, t.UpperThresholdMiles)
	t.SameContinentBonus = src.GetInt(KeySameContinentBonus, t.SameContinentBonus)
	t.DifferentContinentBonus = src.GetInt(KeyDifferentContinentBonus, t.DifferentContinentBonus)
	return t
}
