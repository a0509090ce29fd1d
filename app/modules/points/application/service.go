package pointsservice

import (
	"context"
	"log/slog"
	"time"

	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PointsService implements Service.
type PointsService struct {
	settings settingsservice.Source
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
}

var _ Service = (*PointsService)(nil)

// NewPointsService creates a PointsService reading tunables from settings.
func NewPointsService(
	settings settingsservice.Source,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *PointsService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &PointsService{
		settings: settings,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
}

func (s *PointsService) Tunables() pointsdomain.Tunables {
	return TunablesFromSource(s.settings)
}

func (s *PointsService) CalculatePoints(ctx context.Context, in pointsdomain.AttendanceInput) pointsdomain.PointsCalculation {
	const operationName = "CalculatePoints"

	span := trace.SpanFromContext(ctx)
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName)
	}
	defer span.End()

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operationName, "PointsService")
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "PointsService", time.Since(start))
	}()

	result := pointsdomain.CalculatePoints(in, s.Tunables())

	span.SetAttributes(
		attribute.Int("points.total", result.TotalPoints),
		attribute.String("points.visitor_class", string(result.VisitorClassification)),
	)
	s.logger.DebugContext(ctx, "Points calculated",
		attr.ExtractCorrelationID(ctx),
		attr.Int("event_class", int(in.EventClass)),
		attr.Float64("mileage", in.Mileage),
		attr.Int("total_points", result.TotalPoints),
		attr.String("trace", result.Trace),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, "PointsService")

	return result
}
