package timerservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

// Scheduler plants the watchdog job that fires a countdown's natural end.
// The queue package implements it; the indirection keeps the service free of
// river imports.
type Scheduler interface {
	ScheduleTimerEnd(ctx context.Context, gameID types.GameID, endSeq int64, at time.Time) error
}

// Service is the timer operation contract.
type Service interface {
	StartTimer(ctx context.Context, payload events.TimerStartRequestedPayloadV1) (results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1], error)
	StopTimer(ctx context.Context, payload events.TimerStopRequestedPayloadV1) (results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1], error)
	ResetTimer(ctx context.Context, payload events.TimerResetRequestedPayloadV1) (results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1], error)
	HandleTimerEnd(ctx context.Context, gameID types.GameID, endSeq int64) (bool, error)
}

// TimerService implements Service on top of the timer repository.
type TimerService struct {
	repo      timerdb.Repository
	EventBus  eventbus.EventBus
	logger    *slog.Logger
	metrics   *observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	txOpts    storage.TxOptions
	clock     randutil.Clock
	scheduler Scheduler
}

// NewTimerService creates a new TimerService. The scheduler is attached
// later with SetScheduler because the queue needs the service for its worker.
func NewTimerService(
	repo timerdb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	txOpts storage.TxOptions,
	clock randutil.Clock,
) *TimerService {
	return &TimerService{
		repo:     repo,
		EventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		txOpts:   txOpts,
		clock:    clock,
	}
}

// SetScheduler attaches the watchdog scheduler.
func (s *TimerService) SetScheduler(scheduler Scheduler) { s.scheduler = scheduler }

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *TimerService,
	ctx context.Context,
	operationName string,
	gameID types.GameID,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("game_id", gameID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.GameID("game_id", gameID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
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
			attr.GameID("game_id", gameID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.GameID("game_id", gameID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// runInTx runs fn inside a serializable transaction, retrying on
// serialization conflicts.
func runInTx[S any, F any](
	s *TimerService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := storage.WithinTx(ctx, s.db, s.txOpts, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
