package pointshandlers

import (
	"context"
	"log/slog"

	pointsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/application"
	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// PointsHandlers implements the Handlers interface.
type PointsHandlers struct {
	service pointsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPointsHandlers creates a new PointsHandlers instance.
func NewPointsHandlers(service pointsservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &PointsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleCalculationRequested handles points.calculation.requested.v1.
func (h *PointsHandlers) HandleCalculationRequested(ctx context.Context, payload *events.PointsCalculationRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PointsHandlers.HandleCalculationRequested")
	defer span.End()

	if payload.TenantID == "" {
		h.logger.WarnContext(ctx, "Dropping points request without tenant",
			attr.ExtractCorrelationID(ctx),
			attr.String("attendance_id", payload.AttendanceID),
		)
		return nil, nil
	}

	calc := h.service.CalculatePoints(ctx, pointsdomain.AttendanceInput{
		Mileage:    payload.Mileage,
		EventClass: pointsdomain.EventClass(payload.EventClass),
		Member:     pointsdomain.Location{Country: payload.MemberCountry, Continent: payload.MemberContinent},
		Event:      pointsdomain.Location{Country: payload.EventCountry, Continent: payload.EventContinent},
	})

	return []handlerwrapper.Result{{
		Topic: eventbus.FormatTenantScopedTopic(events.PointsCalculatedV1, payload.TenantID),
		Payload: &events.PointsCalculatedPayloadV1{
			TenantID:              payload.TenantID,
			AttendanceID:          payload.AttendanceID,
			PointsPerEvent:        calc.PointsPerEvent,
			PointsPerDistance:     calc.PointsPerDistance,
			VisitorBonus:          calc.VisitorBonus,
			VisitorClassification: string(calc.VisitorClassification),
			TotalPoints:           calc.TotalPoints,
			Trace:                 calc.Trace,
		},
	}}, nil
}
