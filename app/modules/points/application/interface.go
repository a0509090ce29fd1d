package pointsservice

import (
	"context"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
)

// Service scores attendances using the currently configured tunables.
type Service interface {
	// CalculatePoints never fails; missing or malformed configuration falls
	// back to the built-in defaults.
	CalculatePoints(ctx context.Context, in pointsdomain.AttendanceInput) pointsdomain.PointsCalculation

	// Tunables returns the values CalculatePoints would use right now.
	Tunables() pointsdomain.Tunables
}
