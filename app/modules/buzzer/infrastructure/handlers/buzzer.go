package buzzerhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
)

// HandleBuzzerPressRequest commits one press and reports the resulting queue.
func (h *BuzzerHandlers) HandleBuzzerPressRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleBuzzerPressRequest",
		&events.BuzzerPressRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.BuzzerPressRequestedPayloadV1)

			result, err := h.buzzerService.PressBuzzer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to press buzzer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.BuzzerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.BuzzerPressedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleBuzzerReleaseRequest removes a player from the queue without penalty.
func (h *BuzzerHandlers) HandleBuzzerReleaseRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleBuzzerReleaseRequest",
		&events.BuzzerReleaseRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.BuzzerReleaseRequestedPayloadV1)

			result, err := h.buzzerService.ReleaseBuzzer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to release buzzer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.BuzzerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.BuzzerReleasedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandlePlayerCancelRequest bars a player from the race for the rest of the
// question.
func (h *BuzzerHandlers) HandlePlayerCancelRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandlePlayerCancelRequest",
		&events.PlayerCancelRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.PlayerCancelRequestedPayloadV1)

			result, err := h.buzzerService.CancelPlayer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to cancel player: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.BuzzerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.PlayerCanceledV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleBuzzerClearRequest empties the queue, optionally preserving the
// cancel list.
func (h *BuzzerHandlers) HandleBuzzerClearRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleBuzzerClearRequest",
		&events.BuzzerClearRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.BuzzerClearRequestedPayloadV1)

			result, err := h.buzzerService.ClearBuzzer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to clear buzzer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.BuzzerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.BuzzerClearedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
