package gamehandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
)

// resultMessages turns an operation result into the outgoing message:
// failures go to GameCommandFailedV1, successes to the given topic.
func resultMessages[S any](h *GameHandlers, msg *message.Message, result results.OperationResult[S, events.GameCommandFailedPayloadV1], successTopic string) ([]*message.Message, error) {
	if result.IsFailure() {
		failMsg, err := h.helpers.CreateResultMessage(msg, *result.Failure, events.GameCommandFailedV1)
		if err != nil {
			return nil, fmt.Errorf("failed to create failure message: %w", err)
		}
		return []*message.Message{failMsg}, nil
	}

	successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, successTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create success message: %w", err)
	}
	return []*message.Message{successMsg}, nil
}

// HandleGameCreateRequest registers a session in game_edit.
func (h *GameHandlers) HandleGameCreateRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleGameCreateRequest",
		&events.GameCreateRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.GameCreateRequestedPayloadV1)

			result, err := h.gameService.CreateGame(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to create game: %w", err)
			}
			return resultMessages(h, msg, result, events.GameCreatedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleGameOpenRequest opens the lobby.
func (h *GameHandlers) HandleGameOpenRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleGameOpenRequest",
		&events.GameOpenRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.GameOpenRequestedPayloadV1)

			result, err := h.gameService.OpenGame(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to open game: %w", err)
			}
			return resultMessages(h, msg, result, events.GameOpenedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleGameScheduleRequest parses the requested start time and plants the
// deferred open.
func (h *GameHandlers) HandleGameScheduleRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleGameScheduleRequest",
		&events.GameScheduleRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.GameScheduleRequestedPayloadV1)

			result, err := h.gameService.ScheduleGame(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to schedule game: %w", err)
			}
			return resultMessages(h, msg, result, events.GameScheduledV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleRoundStartRequest enters a round.
func (h *GameHandlers) HandleRoundStartRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleRoundStartRequest",
		&events.RoundStartRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.RoundStartRequestedPayloadV1)

			result, err := h.gameService.StartRound(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to start round: %w", err)
			}
			return resultMessages(h, msg, result, events.RoundStartedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleRoundEndRequest leaves the current round.
func (h *GameHandlers) HandleRoundEndRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleRoundEndRequest",
		&events.RoundEndRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.RoundEndRequestedPayloadV1)

			result, err := h.gameService.EndRound(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to end round: %w", err)
			}
			return resultMessages(h, msg, result, events.RoundEndedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleQuestionStartRequest activates a question.
func (h *GameHandlers) HandleQuestionStartRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleQuestionStartRequest",
		&events.QuestionStartRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.QuestionStartRequestedPayloadV1)

			result, err := h.gameService.StartQuestion(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to start question: %w", err)
			}
			return resultMessages(h, msg, result, events.QuestionStartedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleQuestionEndRequest closes the active question.
func (h *GameHandlers) HandleQuestionEndRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleQuestionEndRequest",
		&events.QuestionEndRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.QuestionEndRequestedPayloadV1)

			result, err := h.gameService.EndQuestion(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to end question: %w", err)
			}
			return resultMessages(h, msg, result, events.QuestionEndedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleQuestionResetRequest rebuilds the realtime sub-state.
func (h *GameHandlers) HandleQuestionResetRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleQuestionResetRequest",
		&events.QuestionResetRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.QuestionResetRequestedPayloadV1)

			result, err := h.gameService.ResetQuestion(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to reset question: %w", err)
			}
			return resultMessages(h, msg, result, events.QuestionResetV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleAnswerResolveRequest scores one answer event.
func (h *GameHandlers) HandleAnswerResolveRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleAnswerResolveRequest",
		&events.AnswerResolveRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.AnswerResolveRequestedPayloadV1)

			result, err := h.gameService.ResolveAnswer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve answer: %w", err)
			}
			return resultMessages(h, msg, result, events.AnswerResolvedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleChooserSwitchRequest advances the rotation by hand.
func (h *GameHandlers) HandleChooserSwitchRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleChooserSwitchRequest",
		&events.ChooserSwitchRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.ChooserSwitchRequestedPayloadV1)

			result, err := h.gameService.SwitchChooser(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to switch chooser: %w", err)
			}
			return resultMessages(h, msg, result, events.ChooserSwitchedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleSpecialStartRequest enters the bonus-round branch.
func (h *GameHandlers) HandleSpecialStartRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleSpecialStartRequest",
		&events.SpecialStartRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.SpecialStartRequestedPayloadV1)

			result, err := h.gameService.StartSpecial(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to start special round: %w", err)
			}
			return resultMessages(h, msg, result, events.SpecialStartedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleGameEndRequest freezes the game.
func (h *GameHandlers) HandleGameEndRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleGameEndRequest",
		&events.GameEndRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.GameEndRequestedPayloadV1)

			result, err := h.gameService.EndGame(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to end game: %w", err)
			}
			return resultMessages(h, msg, result, events.GameEndedV1)
		},
	)

	return wrappedHandler(msg)
}

// HandleTimerEnded reacts to the shared timer's natural end, resolving the
// active question through its round type's policy.
func (h *GameHandlers) HandleTimerEnded(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleTimerEnded",
		&events.TimerEndedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.TimerEndedPayloadV1)

			result, err := h.gameService.HandleTimerEnd(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to handle timer end: %w", err)
			}
			return resultMessages(h, msg, result, events.AnswerResolvedV1)
		},
	)

	return wrappedHandler(msg)
}
