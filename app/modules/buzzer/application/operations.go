package buzzerservice

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// promoteHead hands the answering slot from a departing head to the next
// player in the queue, if any.
func (s *BuzzerService) promoteHead(ctx context.Context, db bun.IDB, departed types.PlayerID, next types.PlayerID) error {
	if err := s.gameRepo.SetPlayerStatus(ctx, db, departed, types.PlayerStatusIdle); err != nil {
		return err
	}
	if next == "" {
		return nil
	}
	return s.gameRepo.SetPlayerStatus(ctx, db, next, types.PlayerStatusReady)
}

// PressBuzzer appends the player to the race queue. Presses by players already
// queued or canceled commit as no-ops and still report the queue, so clients
// can treat every press the same way.
func (s *BuzzerService) PressBuzzer(ctx context.Context, payload events.BuzzerPressRequestedPayloadV1) (results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "PressBuzzer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
				state, err := s.repo.GetQuestionState(ctx, db, payload.GameID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}
				if state.Status != types.QuestionStatusActive {
					return results.Fail[events.BuzzerPressedPayloadV1](events.BuzzerCommandFailedPayloadV1{
						GameID:     payload.GameID,
						QuestionID: payload.QuestionID,
						Command:    "PressBuzzer",
						Reason:     "question is not active",
					}), nil
				}

				if state.Press(payload.PlayerID, s.clock.Now()) {
					if err := s.repo.UpsertQuestionState(ctx, db, state); err != nil {
						return results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
					}
					// A press that lands at the front of the queue makes the
					// player the one entitled to answer.
					if state.Head() == payload.PlayerID {
						if err := s.gameRepo.SetPlayerStatus(ctx, db, payload.PlayerID, types.PlayerStatusReady); err != nil {
							return results.OperationResult[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
						}
					}
				}

				return results.Succeed[events.BuzzerPressedPayloadV1, events.BuzzerCommandFailedPayloadV1](events.BuzzerPressedPayloadV1{
					GameID:     payload.GameID,
					QuestionID: payload.QuestionID,
					Queue:      state.Queue(),
					Head:       state.Head(),
				}), nil
			})
		})
}

// ReleaseBuzzer removes the player from the queue without penalty.
func (s *BuzzerService) ReleaseBuzzer(ctx context.Context, payload events.BuzzerReleaseRequestedPayloadV1) (results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ReleaseBuzzer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
				state, err := s.repo.GetQuestionState(ctx, db, payload.GameID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}

				wasHead := state.Head() == payload.PlayerID
				if state.Release(payload.PlayerID) {
					if err := s.repo.UpsertQuestionState(ctx, db, state); err != nil {
						return results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
					}
					if wasHead {
						if err := s.promoteHead(ctx, db, payload.PlayerID, state.Head()); err != nil {
							return results.OperationResult[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
						}
					}
				}

				return results.Succeed[events.BuzzerReleasedPayloadV1, events.BuzzerCommandFailedPayloadV1](events.BuzzerReleasedPayloadV1{
					GameID:     payload.GameID,
					QuestionID: payload.QuestionID,
					Queue:      state.Queue(),
				}), nil
			})
		})
}

// CancelPlayer removes the player from the race for the rest of the question.
// The clue visible at cancel time is recorded so clue-based types can tell
// which hint the player answered under.
func (s *BuzzerService) CancelPlayer(ctx context.Context, payload events.PlayerCancelRequestedPayloadV1) (results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "CancelPlayer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
				state, err := s.repo.GetQuestionState(ctx, db, payload.GameID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}

				wasHead := state.Head() == payload.PlayerID
				if state.Cancel(payload.PlayerID, s.clock.Now(), state.ClueIdx) {
					if err := s.repo.UpsertQuestionState(ctx, db, state); err != nil {
						return results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
					}
					if wasHead {
						if err := s.promoteHead(ctx, db, payload.PlayerID, state.Head()); err != nil {
							return results.OperationResult[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
						}
					}
				}

				return results.Succeed[events.PlayerCanceledPayloadV1, events.BuzzerCommandFailedPayloadV1](events.PlayerCanceledPayloadV1{
					GameID:     payload.GameID,
					QuestionID: payload.QuestionID,
					Queue:      state.Queue(),
					Canceled:   state.Canceled,
				}), nil
			})
		})
}

// ClearBuzzer empties the queue. With PreserveCanceled set the cancel list
// survives so invalidated players stay out; otherwise both lists reset for a
// fresh attempt.
func (s *BuzzerService) ClearBuzzer(ctx context.Context, payload events.BuzzerClearRequestedPayloadV1) (results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ClearBuzzer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1], error) {
				state, err := s.repo.GetQuestionState(ctx, db, payload.GameID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}

				state.Clear(payload.PreserveCanceled)
				if err := s.repo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}
				// An empty queue means nobody holds the answering slot.
				if err := s.gameRepo.SetPlayerStatuses(ctx, db, payload.GameID, types.PlayerStatusIdle); err != nil {
					return results.OperationResult[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.BuzzerClearedPayloadV1, events.BuzzerCommandFailedPayloadV1](events.BuzzerClearedPayloadV1{
					GameID:           payload.GameID,
					QuestionID:       payload.QuestionID,
					PreserveCanceled: payload.PreserveCanceled,
				}), nil
			})
		})
}
