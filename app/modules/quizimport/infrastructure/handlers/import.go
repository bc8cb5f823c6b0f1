package quizimporthandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
)

// HandleQuizImportRequest parses one uploaded question-set file into the
// game's authored rounds, or reports why the file was refused.
func (h *QuizImportHandlers) HandleQuizImportRequest(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleQuizImportRequest",
		&events.QuizImportRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			p := payload.(*events.QuizImportRequestedPayloadV1)

			result, err := h.importService.ImportQuestionSet(ctx, *p)
			if err != nil {
				return nil, fmt.Errorf("failed to import question set: %w", err)
			}

			if result.IsFailure() {
				failMsg, errMsg := h.helpers.CreateResultMessage(msg, *result.Failure, events.QuizImportCommandFailedV1)
				if errMsg != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", errMsg)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, *result.Success, events.QuizImportedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create success message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
