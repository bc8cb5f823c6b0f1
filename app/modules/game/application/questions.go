package gameservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/round/policies"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// timerArm is the watchdog job to plant once the transaction committed.
type timerArm struct {
	endSeq int64
	at     time.Time
}

// scheduleTimerEnd plants the watchdog after commit. A lost watchdog only
// delays the natural end until an observer reads the timer, so failures are
// logged and swallowed.
func (s *GameService) scheduleTimerEnd(ctx context.Context, gameID types.GameID, arm *timerArm) {
	if arm == nil || s.timerScheduler == nil {
		return
	}
	if err := s.timerScheduler.ScheduleTimerEnd(ctx, gameID, arm.endSeq, arm.at); err != nil {
		s.logger.ErrorContext(ctx, "Failed to schedule timer end watchdog",
			attr.GameID("game_id", gameID),
			attr.Any("end_seq", arm.endSeq),
			attr.Error(err),
		)
	}
}

// StartQuestion activates a question of the current round: fresh realtime
// sub-state prepared by the round type's policy, timer armed and started,
// player statuses reset. Order is the question's index within the round; the
// chooser rotation only advances for a positive order or a fresh rotation.
func (s *GameService) StartQuestion(ctx context.Context, payload events.QuestionStartRequestedPayloadV1) (results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "StartQuestion", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			var arm *timerArm
			result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				currentRound, ok := game.CurrentRoundID()
				if !ok || currentRound != payload.RoundID {
					return failGame[events.QuestionStartedPayloadV1](payload.GameID, "StartQuestion", "round is not the game's current round"), nil
				}
				if err := game.Transition(game.ActiveStatus()); err != nil {
					return failGame[events.QuestionStartedPayloadV1](payload.GameID, "StartQuestion", err.Error()), nil
				}

				round, err := s.roundRepo.GetRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if payload.Order < 0 || payload.Order >= round.QuestionCount() {
					return failGame[events.QuestionStartedPayloadV1](payload.GameID, "StartQuestion", "question order is out of range"), nil
				}
				question, err := s.roundRepo.GetQuestion(ctx, db, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				policy, err := s.policies.ForType(round.Type)
				if err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				state := rounddomain.NewQuestionState(game.ID, payload.RoundID, payload.QuestionID)
				handle := &rotationHandle{
					rotation: game.Rotation,
					advance:  payload.Order > 0 || game.Rotation == nil || game.Rotation.Idx < 0,
				}
				if err := policy.PrepareQuestionStart(&policies.PrepareContext{
					Round:    round,
					Question: question,
					State:    state,
					Chooser:  handle,
					Teams:    game.TeamIDs,
				}); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				state.Status = types.QuestionStatusActive
				if err := s.roundRepo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				round.CurrentQuestionIdx = payload.Order
				if err := s.roundRepo.SaveRoundProgress(ctx, db, round); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				thinking := s.thinkingTime(round.ThinkingTime)
				timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				timer.Reset(thinking)
				if err := timer.Start(s.clock.Now(), 0, false, "game"); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.timerRepo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if deadline, ok := timer.Deadline(); ok {
					arm = &timerArm{endSeq: timer.EndSeq, at: deadline}
				}

				if err := s.repo.SetPlayerStatuses(ctx, db, game.ID, types.PlayerStatusIdle); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				// The chooser team's players see the answering affordance.
				if state.ChooserTeam != "" {
					if err := s.repo.SetTeamPlayerStatuses(ctx, db, game.ID, state.ChooserTeam, types.PlayerStatusFocus); err != nil {
						return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
					}
				}

				game.CurrentQuestionID = payload.QuestionID
				game.CurrentQuestionType = round.Type
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.QuestionStartedPayloadV1, events.GameCommandFailedPayloadV1](events.QuestionStartedPayloadV1{
					GameID:       game.ID,
					RoundID:      payload.RoundID,
					QuestionID:   payload.QuestionID,
					ChooserTeam:  state.ChooserTeam,
					ThinkingTime: thinking,
				}), nil
			})
			if err == nil && result.IsSuccess() {
				s.scheduleTimerEnd(ctx, payload.GameID, arm)
			}
			return result, err
		})
}

// EndQuestion closes the active question. Ranking-scored types pay out here
// through their finalizer when no answer resolved the question already.
func (s *GameService) EndQuestion(ctx context.Context, payload events.QuestionEndRequestedPayloadV1) (results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "EndQuestion", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				// A resolving answer already moved the game to rest.
				if game.Status != game.RestingStatus() {
					if err := game.Transition(game.RestingStatus()); err != nil {
						return failGame[events.QuestionEndedPayloadV1](payload.GameID, "EndQuestion", err.Error()), nil
					}
				}

				state, err := s.roundRepo.GetQuestionState(ctx, db, game.ID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				round, err := s.roundRepo.GetRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if state.Status != types.QuestionStatusResolved {
					policy, err := s.policies.ForType(round.Type)
					if err != nil {
						return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
					}
					if finalizer, ok := policy.(policies.Finalizer); ok {
						question, err := s.roundRepo.GetQuestion(ctx, db, payload.QuestionID)
						if err != nil {
							return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
						}
						res, err := finalizer.FinalizeQuestion(&policies.ResolveContext{
							Round:    round,
							Question: question,
							State:    state,
							Teams:    game.TeamIDs,
							Now:      s.clock.Now(),
						})
						if err != nil {
							return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
						}
						if _, err := s.applyResolution(ctx, db, game, state, res); err != nil {
							return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
						}
					}
					state.Status = types.QuestionStatusResolved
				}
				if err := s.roundRepo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				// A stop after the timer already ended or was stopped is a no-op.
				if err := timer.Stop(s.clock.Now()); err == nil {
					if err := s.timerRepo.SaveTimer(ctx, db, timer); err != nil {
						return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
					}
				}

				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.QuestionEndedPayloadV1, events.GameCommandFailedPayloadV1](events.QuestionEndedPayloadV1{
					GameID:         game.ID,
					RoundID:        payload.RoundID,
					QuestionID:     payload.QuestionID,
					RoundExhausted: round.Exhausted(),
				}), nil
			})
		})
}

// ResetQuestion rebuilds the realtime sub-state from scratch. The chooser is
// re-derived from the rotation's current position, so repeating a reset
// yields the same state.
func (s *GameService) ResetQuestion(ctx context.Context, payload events.QuestionResetRequestedPayloadV1) (results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ResetQuestion", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				round, err := s.roundRepo.GetRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				question, err := s.roundRepo.GetQuestion(ctx, db, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				policy, err := s.policies.ForType(round.Type)
				if err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				prevStatus := types.QuestionStatusIdle
				if prev, err := s.roundRepo.GetQuestionState(ctx, db, game.ID, payload.QuestionID); err == nil {
					prevStatus = prev.Status
				}

				state := rounddomain.NewQuestionState(game.ID, payload.RoundID, payload.QuestionID)
				if err := policy.PrepareQuestionStart(&policies.PrepareContext{
					Round:    round,
					Question: question,
					State:    state,
					Chooser:  &rotationHandle{rotation: game.Rotation},
					Teams:    game.TeamIDs,
				}); err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				state.Status = prevStatus
				if err := s.roundRepo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.QuestionResetPayloadV1, events.GameCommandFailedPayloadV1](events.QuestionResetPayloadV1{
					GameID:     game.ID,
					RoundID:    payload.RoundID,
					QuestionID: payload.QuestionID,
				}), nil
			})
		})
}

// StartSpecial enters the bonus-round branch after a round end. The branch
// reuses the round ledger and the question machinery under the special
// statuses.
func (s *GameService) StartSpecial(ctx context.Context, payload events.SpecialStartRequestedPayloadV1) (results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "StartSpecial", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if game.SpecialRoundID == nil {
					return failGame[events.SpecialStartedPayloadV1](payload.GameID, "StartSpecial", "game has no special round"), nil
				}
				if err := game.Transition(types.GameStatusSpecialHome); err != nil {
					return failGame[events.SpecialStartedPayloadV1](payload.GameID, "StartSpecial", err.Error()), nil
				}

				round, err := s.roundRepo.GetRound(ctx, db, *game.SpecialRoundID)
				if err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				game.Rotation = chooser.NewRotation(game.TeamIDs, randutil.NewSource(game.Seed+int64(len(game.RoundIDs))+1))
				game.CurrentQuestionID = types.QuestionID{}
				game.CurrentQuestionType = round.Type

				round.CurrentQuestionIdx = -1
				if err := s.roundRepo.SaveRoundProgress(ctx, db, round); err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.scoreRepo.ResetRoundLedger(ctx, db, game.ID, game.TeamIDs); err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				timer.Reset(s.thinkingTime(round.ThinkingTime))
				if err := s.timerRepo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.SpecialStartedPayloadV1, events.GameCommandFailedPayloadV1](events.SpecialStartedPayloadV1{
					GameID:  game.ID,
					RoundID: *game.SpecialRoundID,
				}), nil
			})
		})
}
