package gamehandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	gameservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/application"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
)

// Handlers is the message-facing surface of the game orchestrator.
type Handlers interface {
	HandleGameCreateRequest(msg *message.Message) ([]*message.Message, error)
	HandleGameOpenRequest(msg *message.Message) ([]*message.Message, error)
	HandleGameScheduleRequest(msg *message.Message) ([]*message.Message, error)
	HandleRoundStartRequest(msg *message.Message) ([]*message.Message, error)
	HandleRoundEndRequest(msg *message.Message) ([]*message.Message, error)
	HandleQuestionStartRequest(msg *message.Message) ([]*message.Message, error)
	HandleQuestionEndRequest(msg *message.Message) ([]*message.Message, error)
	HandleQuestionResetRequest(msg *message.Message) ([]*message.Message, error)
	HandleAnswerResolveRequest(msg *message.Message) ([]*message.Message, error)
	HandleChooserSwitchRequest(msg *message.Message) ([]*message.Message, error)
	HandleSpecialStartRequest(msg *message.Message) ([]*message.Message, error)
	HandleGameEndRequest(msg *message.Message) ([]*message.Message, error)
	HandleTimerEnded(msg *message.Message) ([]*message.Message, error)
}

// GameHandlers handles game lifecycle events.
type GameHandlers struct {
	gameService    gameservice.Service
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *observability.OperationMetrics
	helpers        utils.Helpers
	handlerWrapper func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc
}

// NewGameHandlers creates a new GameHandlers.
func NewGameHandlers(
	gameService gameservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics *observability.OperationMetrics,
) Handlers {
	return &GameHandlers{
		gameService: gameService,
		logger:      logger,
		tracer:      tracer,
		helpers:     helpers,
		metrics:     metrics,
		handlerWrapper: func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc {
			return handlerWrapper(handlerName, unmarshalTo, handlerFunc, logger, metrics, tracer, helpers)
		},
	}
}

// handlerWrapper handles common tracing, logging, and metrics for handlers.
func handlerWrapper(
	handlerName string,
	unmarshalTo interface{},
	handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error),
	logger *slog.Logger,
	metrics *observability.OperationMetrics,
	tracer trace.Tracer,
	helpers utils.Helpers,
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName)
		defer span.End()

		metrics.RecordOperationAttempt(ctx, handlerName)

		startTime := time.Now()
		defer func() {
			metrics.RecordOperationDuration(ctx, handlerName, time.Since(startTime))
		}()

		logger.InfoContext(ctx, handlerName+" triggered",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
		)

		payloadInstance := unmarshalTo
		if payloadInstance != nil {
			if err := helpers.UnmarshalPayload(msg, payloadInstance); err != nil {
				logger.ErrorContext(ctx, "Failed to unmarshal payload",
					attr.ExtractCorrelationID(ctx),
					attr.Error(err),
				)
				metrics.RecordOperationFailure(ctx, handlerName)
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		result, err := handlerFunc(ctx, msg, payloadInstance)
		if err != nil {
			logger.ErrorContext(ctx, "Error in "+handlerName,
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			metrics.RecordOperationFailure(ctx, handlerName)
			return nil, err
		}

		metrics.RecordOperationSuccess(ctx, handlerName)
		return result, nil
	}
}
