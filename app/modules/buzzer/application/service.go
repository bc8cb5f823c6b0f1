package buzzerservice

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
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

// Service is the buzzer race contract. Every operation commits as one
// transaction; concurrent presses are serialized by the store's retry loop,
// so queue order is commit order.
type Service interface {
	PressBuzzer(ctx context.Context, payload events.BuzzerPressRequestedPayloadV1) (results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1], error)
	ReleaseBuzzer(ctx context.Context, payload events.BuzzerReleaseRequestedPayloadV1) (results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1], error)
	CancelPlayer(ctx context.Context, payload events.PlayerCancelRequestedPayloadV1) (results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1], error)
	ClearBuzzer(ctx context.Context, payload events.BuzzerClearRequestedPayloadV1) (results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1], error)
}

// BuzzerService implements Service on top of the question state repository.
// The game repository mirrors the race onto player statuses: the head shows
// ready, everyone else stays where the question start put them.
type BuzzerService struct {
	repo     rounddb.Repository
	gameRepo gamedb.Repository
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *observability.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
	txOpts   storage.TxOptions
	clock    randutil.Clock
}

// NewBuzzerService creates a new BuzzerService.
func NewBuzzerService(
	repo rounddb.Repository,
	gameRepo gamedb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	txOpts storage.TxOptions,
	clock randutil.Clock,
) *BuzzerService {
	return &BuzzerService{
		repo:     repo,
		gameRepo: gameRepo,
		EventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		txOpts:   txOpts,
		clock:    clock,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *BuzzerService,
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
	s *BuzzerService,
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
