package rankinghandlers

import (
	"context"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
)

// Handlers defines the interface for ranking event handlers.
type Handlers interface {
	// HandleAttendanceConfirmed applies a confirmed attendance to every scope
	// of the member and reports the outcome on ranking.updated.v1.
	HandleAttendanceConfirmed(ctx context.Context, payload *events.AttendanceConfirmedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRebuildRequested runs a rebuild and reports it on ranking.rebuilt.v1.
	HandleRebuildRequested(ctx context.Context, payload *events.RankingRebuildRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
