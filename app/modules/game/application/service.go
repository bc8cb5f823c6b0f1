package gameservice

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
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/round/policies"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
	timerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/application"
	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// StartScheduler enqueues the deferred lobby-open of a scheduled game.
type StartScheduler interface {
	ScheduleGameStart(ctx context.Context, gameID types.GameID, at time.Time) error
}

// Service is the orchestrator contract: every lifecycle command of a session,
// each committing as exactly one transaction.
type Service interface {
	CreateGame(ctx context.Context, payload events.GameCreateRequestedPayloadV1) (results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1], error)
	OpenGame(ctx context.Context, payload events.GameOpenRequestedPayloadV1) (results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1], error)
	ScheduleGame(ctx context.Context, payload events.GameScheduleRequestedPayloadV1) (results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1], error)
	StartRound(ctx context.Context, payload events.RoundStartRequestedPayloadV1) (results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1], error)
	EndRound(ctx context.Context, payload events.RoundEndRequestedPayloadV1) (results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1], error)
	StartQuestion(ctx context.Context, payload events.QuestionStartRequestedPayloadV1) (results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1], error)
	EndQuestion(ctx context.Context, payload events.QuestionEndRequestedPayloadV1) (results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1], error)
	ResetQuestion(ctx context.Context, payload events.QuestionResetRequestedPayloadV1) (results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1], error)
	ResolveAnswer(ctx context.Context, payload events.AnswerResolveRequestedPayloadV1) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error)
	SwitchChooser(ctx context.Context, payload events.ChooserSwitchRequestedPayloadV1) (results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1], error)
	StartSpecial(ctx context.Context, payload events.SpecialStartRequestedPayloadV1) (results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1], error)
	EndGame(ctx context.Context, payload events.GameEndRequestedPayloadV1) (results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1], error)
	HandleTimerEnd(ctx context.Context, payload events.TimerEndedPayloadV1) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error)
}

// GameService implements Service. It owns the transaction; the policies,
// rotation, ledger and timer mutate inside it.
type GameService struct {
	repo      gamedb.Repository
	roundRepo rounddb.Repository
	scoreRepo scoredb.Repository
	timerRepo timerdb.Repository
	policies  *policies.Registry

	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *observability.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
	txOpts   storage.TxOptions
	clock    randutil.Clock
	cfg      *config.Config

	timerScheduler timerservice.Scheduler
	startScheduler StartScheduler
}

// NewGameService creates a new GameService.
func NewGameService(
	repo gamedb.Repository,
	roundRepo rounddb.Repository,
	scoreRepo scoredb.Repository,
	timerRepo timerdb.Repository,
	registry *policies.Registry,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	txOpts storage.TxOptions,
	clock randutil.Clock,
	cfg *config.Config,
) *GameService {
	return &GameService{
		repo:      repo,
		roundRepo: roundRepo,
		scoreRepo: scoreRepo,
		timerRepo: timerRepo,
		policies:  registry,
		EventBus:  eventBus,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		txOpts:    txOpts,
		clock:     clock,
		cfg:       cfg,
	}
}

// SetTimerScheduler attaches the watchdog queue. Wired after construction,
// the queue needs the timer service first.
func (s *GameService) SetTimerScheduler(sched timerservice.Scheduler) {
	s.timerScheduler = sched
}

// SetStartScheduler attaches the scheduled-start queue.
func (s *GameService) SetStartScheduler(sched StartScheduler) {
	s.startScheduler = sched
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *GameService,
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
	s *GameService,
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

// failGame builds the shared failure payload.
func failGame[S any](gameID types.GameID, command, reason string) results.OperationResult[S, events.GameCommandFailedPayloadV1] {
	return results.Fail[S](events.GameCommandFailedPayloadV1{
		GameID:  gameID,
		Command: command,
		Reason:  reason,
	})
}
