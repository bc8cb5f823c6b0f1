package quizimportservice

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
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/parsers"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

// Service is the question-set import contract.
type Service interface {
	ImportQuestionSet(ctx context.Context, payload events.QuizImportRequestedPayloadV1) (results.OperationResult[events.QuizImportedPayloadV1, events.QuizImportCommandFailedPayloadV1], error)
}

// ImportService implements Service on top of the game and round repositories.
type ImportService struct {
	gameRepo  gamedb.Repository
	roundRepo rounddb.Repository
	factory   parsers.ParserFactory
	EventBus  eventbus.EventBus
	logger    *slog.Logger
	metrics   *observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	txOpts    storage.TxOptions
}

// NewImportService creates a new ImportService.
func NewImportService(
	gameRepo gamedb.Repository,
	roundRepo rounddb.Repository,
	factory parsers.ParserFactory,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	txOpts storage.TxOptions,
) *ImportService {
	return &ImportService{
		gameRepo:  gameRepo,
		roundRepo: roundRepo,
		factory:   factory,
		EventBus:  eventBus,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		txOpts:    txOpts,
	}
}

type importResult = results.OperationResult[events.QuizImportedPayloadV1, events.QuizImportCommandFailedPayloadV1]

func failImport(gameID types.GameID, reason string) importResult {
	return results.Fail[events.QuizImportedPayloadV1](events.QuizImportCommandFailedPayloadV1{
		GameID:  gameID,
		Command: "ImportQuestionSet",
		Reason:  reason,
	})
}

// ImportQuestionSet parses one uploaded file and persists its rounds and
// questions onto a game still under edit. Imported rounds are appended after
// any rounds the game already has; a buzzer round becomes the game's special
// round and may appear at most once per file.
func (s *ImportService) ImportQuestionSet(ctx context.Context, payload events.QuizImportRequestedPayloadV1) (importResult, error) {
	return s.withTelemetry(ctx, "ImportQuestionSet", payload.GameID,
		func(ctx context.Context) (importResult, error) {
			parser, err := s.factory.GetParser(payload.Filename)
			if err != nil {
				return failImport(payload.GameID, err.Error()), nil
			}

			set, err := parser.Parse(payload.Data)
			if err != nil {
				return failImport(payload.GameID, err.Error()), nil
			}

			return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) (importResult, error) {
				game, err := s.gameRepo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return importResult{}, err
				}
				if game.Status != types.GameStatusEdit {
					return failImport(payload.GameID, "game is no longer editable"), nil
				}

				var roundIDs []types.RoundID
				questionCount := 0
				for i, parsed := range set.Rounds {
					round, questions := parsed.ToDomain(payload.GameID)
					position := len(game.RoundIDs)

					if parsed.Type == types.RoundTypeBuzzer {
						if game.SpecialRoundID != nil {
							return failImport(payload.GameID, "game already has a special round"), nil
						}
						id := round.ID
						game.SpecialRoundID = &id
						// The special round sits after every ordinary round.
						position = len(game.RoundIDs) + len(set.Rounds) - i
					} else {
						game.RoundIDs = append(game.RoundIDs, round.ID)
					}

					if err := s.roundRepo.CreateRound(ctx, db, round, position); err != nil {
						return importResult{}, err
					}
					for pos, question := range questions {
						if err := s.roundRepo.CreateQuestion(ctx, db, question, pos); err != nil {
							return importResult{}, err
						}
					}

					roundIDs = append(roundIDs, round.ID)
					questionCount += len(questions)
				}

				if err := s.gameRepo.SaveGame(ctx, db, game); err != nil {
					return importResult{}, err
				}

				return results.Succeed[events.QuizImportedPayloadV1, events.QuizImportCommandFailedPayloadV1](events.QuizImportedPayloadV1{
					GameID:        payload.GameID,
					RoundIDs:      roundIDs,
					RoundCount:    len(roundIDs),
					QuestionCount: questionCount,
				}), nil
			})
		})
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func (s *ImportService) withTelemetry(
	ctx context.Context,
	operationName string,
	gameID types.GameID,
	op func(ctx context.Context) (importResult, error),
) (result importResult, err error) {
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
			result = importResult{}
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
func (s *ImportService) runInTx(
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (importResult, error),
) (importResult, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result importResult
	err := storage.WithinTx(ctx, s.db, s.txOpts, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
