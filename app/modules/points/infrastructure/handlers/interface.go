package pointshandlers

import (
	"context"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
)

// Handlers defines the interface for points event handlers.
type Handlers interface {
	// HandleCalculationRequested answers a points quote request on
	// points.calculated.v1 for the requesting tenant.
	HandleCalculationRequested(ctx context.Context, payload *events.PointsCalculationRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
