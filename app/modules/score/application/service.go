package scoreservice

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
	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

// Service is the ledger operation contract.
type Service interface {
	IncreaseTeamScore(ctx context.Context, payload events.ScoreIncreaseRequestedPayloadV1) (results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1], error)
	GetTotals(ctx context.Context, gameID types.GameID, scope events.LedgerScope) (map[types.TeamID]types.Score, error)
	GetRanking(ctx context.Context, gameID types.GameID, scope events.LedgerScope) ([]scoredomain.Standing, error)
	RenderProgressChart(ctx context.Context, gameID types.GameID, scope events.LedgerScope) ([]byte, error)
}

// ScoreService implements Service on top of the ledger repository.
type ScoreService struct {
	repo     scoredb.Repository
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *observability.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
	txOpts   storage.TxOptions
}

// NewScoreService creates a new ScoreService.
func NewScoreService(
	repo scoredb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	txOpts storage.TxOptions,
) *ScoreService {
	return &ScoreService{
		repo:     repo,
		EventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		txOpts:   txOpts,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScoreService,
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
	s *ScoreService,
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

// GetTotals reads the running totals of one scope.
func (s *ScoreService) GetTotals(ctx context.Context, gameID types.GameID, scope events.LedgerScope) (map[types.TeamID]types.Score, error) {
	ledger, err := s.repo.GetLedger(ctx, nil, gameID, scope)
	if err != nil {
		return nil, err
	}
	return ledger.Totals(), nil
}

// GetRanking reads the current standing of one scope, best total first.
func (s *ScoreService) GetRanking(ctx context.Context, gameID types.GameID, scope events.LedgerScope) ([]scoredomain.Standing, error) {
	ledger, err := s.repo.GetLedger(ctx, nil, gameID, scope)
	if err != nil {
		return nil, err
	}
	return ledger.Ranking(), nil
}
