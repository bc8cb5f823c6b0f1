package timerhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
)

// HandleTimerStartRequest runs the timer.
func (h *TimerHandlers) HandleTimerStartRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleTimerStartRequest",
		&events.TimerStartRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.TimerStartRequestedPayloadV1)

			result, err := h.timerService.StartTimer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to start timer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.TimerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.TimerStartedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleTimerStopRequest pauses the timer.
func (h *TimerHandlers) HandleTimerStopRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleTimerStopRequest",
		&events.TimerStopRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.TimerStopRequestedPayloadV1)

			result, err := h.timerService.StopTimer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to stop timer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.TimerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.TimerStoppedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleTimerResetRequest re-arms the timer.
func (h *TimerHandlers) HandleTimerResetRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleTimerResetRequest",
		&events.TimerResetRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.TimerResetRequestedPayloadV1)

			result, err := h.timerService.ResetTimer(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to reset timer: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.TimerCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.TimerResetV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
