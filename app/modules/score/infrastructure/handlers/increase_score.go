package scorehandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
)

// HandleScoreIncreaseRequest applies one score delta and reports the new
// totals, or the reason the delta was refused.
func (h *ScoreHandlers) HandleScoreIncreaseRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleScoreIncreaseRequest",
		&events.ScoreIncreaseRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.ScoreIncreaseRequestedPayloadV1)

			result, err := h.scoreService.IncreaseTeamScore(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to increase team score: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.ScoreCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.ScoreIncreasedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
