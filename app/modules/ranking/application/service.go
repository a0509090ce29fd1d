package rankingservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RankingService"

// RankingService implements the Service interface.
type RankingService struct {
	snapshots rankingdb.Repository
	ledger    attendancedb.Repository
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	locks     *partitionLocks
	now       func() time.Time
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	snapshots rankingdb.Repository,
	ledger attendancedb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RankingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankingService{
		snapshots: snapshots,
		ledger:    ledger,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		locks:     newPartitionLocks(),
		now:       time.Now,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RankingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx runs fn in a transaction, or directly when no database is wired.
func runInTx[S any, F any](
	s *RankingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
