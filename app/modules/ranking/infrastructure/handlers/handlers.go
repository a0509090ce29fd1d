package rankinghandlers

import (
	"context"
	"log/slog"
	"time"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/eventbus"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/events"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/handlerwrapper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RankingHandlers implements the Handlers interface.
type RankingHandlers struct {
	service rankingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewRankingHandlers creates a new RankingHandlers instance.
func NewRankingHandlers(
	service rankingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &RankingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		now:     time.Now,
	}
}

// HandleAttendanceConfirmed handles attendance.confirmed.v1.
func (h *RankingHandlers) HandleAttendanceConfirmed(ctx context.Context, payload *events.AttendanceConfirmedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RankingHandlers.HandleAttendanceConfirmed")
	defer span.End()

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		h.logger.WarnContext(ctx, "Dropping attendance with invalid tenant id",
			attr.ExtractCorrelationID(ctx),
			attr.String("tenant_id", payload.TenantID),
			attr.Error(err),
		)
		return nil, nil
	}
	memberID, err := uuid.Parse(payload.MemberID)
	if err != nil {
		h.logger.WarnContext(ctx, "Dropping attendance with invalid member id",
			attr.ExtractCorrelationID(ctx),
			attr.String("member_id", payload.MemberID),
			attr.Error(err),
		)
		return nil, nil
	}
	// Optional on the wire; older producers omit them. Without an attendance id
	// a redelivery cannot be told apart from a new attendance.
	attendanceID, _ := uuid.Parse(payload.AttendanceID)
	eventID, _ := uuid.Parse(payload.EventID)

	year := payload.Year
	if year == 0 && !payload.ConfirmedAt.IsZero() {
		year = payload.ConfirmedAt.Year()
	}

	h.logger.InfoContext(ctx, "Applying confirmed attendance to rankings",
		attr.ExtractCorrelationID(ctx),
		attr.TenantID(tenantID),
		attr.String("member_id", payload.MemberID),
		attr.Int("year", year),
		attr.Int("points_awarded", payload.PointsAwarded),
	)

	applied := h.service.ApplyConfirmedAttendance(ctx, rankingservice.ConfirmedAttendance{
		TenantID:      tenantID,
		AttendanceID:  attendanceID,
		EventID:       eventID,
		MemberID:      memberID,
		Year:          year,
		PointsAwarded: payload.PointsAwarded,
		MilesRecorded: payload.MilesRecorded,
		VisitorClass:  pointsdomain.ParseVisitorClass(payload.VisitorClass),
		Member: rankingdomain.MemberScopeAttributes{
			ChapterID: payload.ChapterID,
			Country:   payload.Country,
			Continent: payload.Continent,
		},
		ConfirmedAt: payload.ConfirmedAt,
	})

	out := &events.RankingUpdatedPayloadV1{
		TenantID:     payload.TenantID,
		MemberID:     payload.MemberID,
		AttendanceID: payload.AttendanceID,
		Year:         year,
		Scopes:       make([]events.ScopeUpdateV1, 0, len(applied.Scopes)),
	}
	for _, s := range applied.Scopes {
		out.Scopes = append(out.Scopes, events.ScopeUpdateV1{
			ScopeType:   string(s.Scope.Type),
			ScopeID:     s.Scope.ID,
			Success:     s.Result.Success,
			Message:     s.Result.Message,
			NewRank:     s.Result.NewRank,
			TotalPoints: s.Result.TotalPoints,
			TotalMiles:  s.Result.TotalMiles,
		})
	}

	return []handlerwrapper.Result{{
		Topic:   eventbus.FormatTenantScopedTopic(events.RankingUpdatedV1, tenantID.String()),
		Payload: out,
	}}, nil
}

// HandleRebuildRequested handles ranking.rebuild.requested.v1. An empty scope
// type rebuilds every scope of the tenant and year.
func (h *RankingHandlers) HandleRebuildRequested(ctx context.Context, payload *events.RankingRebuildRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RankingHandlers.HandleRebuildRequested")
	defer span.End()

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		h.logger.WarnContext(ctx, "Dropping rebuild request with invalid tenant id",
			attr.ExtractCorrelationID(ctx),
			attr.String("tenant_id", payload.TenantID),
			attr.Error(err),
		)
		return nil, nil
	}

	h.logger.InfoContext(ctx, "Rebuild requested",
		attr.ExtractCorrelationID(ctx),
		attr.TenantID(tenantID),
		attr.Int("year", payload.Year),
		attr.String("scope_type", payload.ScopeType),
		attr.String("scope_id", payload.ScopeID),
		attr.String("requested_by", payload.RequestedBy),
	)

	var res rankingservice.RankingRebuildResult
	if payload.ScopeType == "" {
		res = h.service.RebuildAll(ctx, tenantID, payload.Year)
	} else {
		scopeType, err := rankingdomain.ParseScopeType(payload.ScopeType)
		if err != nil {
			res = rankingservice.RankingRebuildResult{Success: false, Message: err.Error()}
		} else {
			res = h.service.Rebuild(ctx, tenantID, payload.Year, scopeType, payload.ScopeID)
		}
	}

	if !res.Success {
		h.logger.WarnContext(ctx, "Rebuild failed",
			attr.ExtractCorrelationID(ctx),
			attr.TenantID(tenantID),
			attr.String("message", res.Message),
			attr.Int64("elapsed_ms", res.ElapsedMs),
		)
	}

	return []handlerwrapper.Result{{
		Topic: eventbus.FormatTenantScopedTopic(events.RankingRebuiltV1, tenantID.String()),
		Payload: &events.RankingRebuiltPayloadV1{
			TenantID:     payload.TenantID,
			Year:         payload.Year,
			ScopeType:    payload.ScopeType,
			ScopeID:      payload.ScopeID,
			Success:      res.Success,
			Message:      res.Message,
			UpdatedCount: res.UpdatedCount,
			ElapsedMs:    res.ElapsedMs,
			CompletedAt:  h.now().UTC(),
		},
	}}, nil
}
