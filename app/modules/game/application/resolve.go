package gameservice

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/round/policies"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// applyResolution lands a policy resolution inside the caller's transaction:
// deltas on the round ledger under one checkpoint, race cancellation, the
// resolved/resting flip, and the timer stop or resume. The caller persists
// the state and the game afterwards. A non-nil timerArm means a watchdog must
// be planted after commit.
func (s *GameService) applyResolution(ctx context.Context, db bun.IDB, game *gamedomain.Game, state *rounddomain.QuestionState, res policies.Resolution) (*timerArm, error) {
	now := s.clock.Now()

	if len(res.Deltas) > 0 {
		ledger, err := s.scoreRepo.GetLedger(ctx, db, game.ID, events.LedgerScopeRound)
		if err != nil {
			return nil, err
		}
		for _, delta := range res.Deltas {
			if !delta.IsZero() {
				ledger.Scores[delta.TeamID] += delta.Points
			}
		}
		ledger.Checkpoint(state.QuestionID.String())
		if err := s.scoreRepo.SaveLedger(ctx, db, game.ID, events.LedgerScopeRound, ledger); err != nil {
			return nil, err
		}
	}

	if res.CancelPlayer != "" {
		state.Cancel(res.CancelPlayer, now, state.ClueIdx)
		if err := s.repo.SetPlayerStatus(ctx, db, res.CancelPlayer, types.PlayerStatusIdle); err != nil {
			return nil, err
		}
		// The next player in the race inherits the answering slot.
		if head := state.Head(); head != "" {
			if err := s.repo.SetPlayerStatus(ctx, db, head, types.PlayerStatusReady); err != nil {
				return nil, err
			}
		}
	}
	if res.WinnerTeam != "" {
		state.WinnerTeam = res.WinnerTeam
	}
	if res.QuestionDone {
		state.Status = types.QuestionStatusResolved
		if game.ActiveStatus() == game.Status {
			if err := game.Transition(game.RestingStatus()); err != nil {
				return nil, err
			}
		}
	}

	var arm *timerArm
	if res.StopTimer || res.ResumeTimer || res.QuestionDone {
		timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
		if err != nil {
			return nil, err
		}
		changed := false
		switch {
		case res.ResumeTimer && !res.QuestionDone:
			// Resume continues with the banked remaining time.
			if timer.Status == types.TimerStatusStopped {
				if err := timer.Start(now, 0, false, "game"); err != nil {
					return nil, err
				}
				changed = true
				if deadline, ok := timer.Deadline(); ok {
					arm = &timerArm{endSeq: timer.EndSeq, at: deadline}
				}
			}
		default:
			// Stopping an already stopped or ended timer is a no-op.
			if err := timer.Stop(now); err == nil {
				changed = true
			}
		}
		if changed {
			if err := s.timerRepo.SaveTimer(ctx, db, timer); err != nil {
				return nil, err
			}
		}
	}

	return arm, nil
}

// playerTeams maps each registered player of the game to their team.
func (s *GameService) playerTeams(ctx context.Context, db bun.IDB, gameID types.GameID) (map[types.PlayerID]types.TeamID, error) {
	players, err := s.repo.GetPlayersByGame(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	out := make(map[types.PlayerID]types.TeamID, len(players))
	for _, p := range players {
		out[p.ID] = p.TeamID
	}
	return out, nil
}

// ResolveAnswer feeds one answer event through the current round type's
// policy and lands the outcome. Rejected answers fail the command without
// touching any state.
func (s *GameService) ResolveAnswer(ctx context.Context, payload events.AnswerResolveRequestedPayloadV1) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ResolveAnswer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			var arm *timerArm
			result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if game.Status != game.ActiveStatus() {
					return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "ResolveAnswer", "no question is active"), nil
				}
				if game.CurrentQuestionID != payload.QuestionID {
					return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "ResolveAnswer", "question is not the active one"), nil
				}

				round, err := s.roundRepo.GetRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				question, err := s.roundRepo.GetQuestion(ctx, db, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				state, err := s.roundRepo.GetQuestionState(ctx, db, game.ID, payload.QuestionID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				policy, err := s.policies.ForType(round.Type)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				players, err := s.playerTeams(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				res, err := policy.ResolveAnswer(&policies.ResolveContext{
					Round:    round,
					Question: question,
					State:    state,
					Teams:    game.TeamIDs,
					Players:  players,
					Now:      s.clock.Now(),
				}, payload.Answer)
				if err != nil {
					if gameerr.IsInvalidCommand(err) {
						return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "ResolveAnswer", err.Error()), nil
					}
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				arm, err = s.applyResolution(ctx, db, game, state, res)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := s.roundRepo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1](events.AnswerResolvedPayloadV1{
					GameID:         game.ID,
					RoundID:        payload.RoundID,
					QuestionID:     payload.QuestionID,
					Deltas:         res.Deltas,
					QuestionStatus: state.Status,
					WinnerTeam:     res.WinnerTeam,
				}), nil
			})
			if err == nil && result.IsSuccess() {
				s.scheduleTimerEnd(ctx, payload.GameID, arm)
			}
			return result, err
		})
}

// HandleTimerEnd reacts to the shared timer's natural end. Types that listen
// (riddles advance a clue, enumerations close) resolve through their policy;
// every other type simply closes the active question.
func (s *GameService) HandleTimerEnd(ctx context.Context, payload events.TimerEndedPayloadV1) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "HandleTimerEnd", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			var arm *timerArm
			result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if game.Status != game.ActiveStatus() || game.CurrentQuestionID.IsNil() {
					return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "HandleTimerEnd", "no question is active"), nil
				}

				// The end event is only actionable while it carries the latched,
				// unconsumed sequence. Redeliveries and ends from older timer
				// runs are refused.
				timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if timer.Status != types.TimerStatusEnded || timer.EndProcessedSeq != payload.EndSeq {
					return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "HandleTimerEnd", "timer end is stale or already handled"), nil
				}

				roundID, ok := game.CurrentRoundID()
				if !ok {
					return failGame[events.AnswerResolvedPayloadV1](payload.GameID, "HandleTimerEnd", "game has no current round"), nil
				}
				round, err := s.roundRepo.GetRound(ctx, db, roundID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				question, err := s.roundRepo.GetQuestion(ctx, db, game.CurrentQuestionID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				state, err := s.roundRepo.GetQuestionState(ctx, db, game.ID, game.CurrentQuestionID)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				policy, err := s.policies.ForType(round.Type)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				res := policies.Resolution{QuestionDone: true}
				if ender, ok := policy.(policies.TimerEnder); ok {
					res, err = ender.OnTimerEnd(&policies.ResolveContext{
						Round:    round,
						Question: question,
						State:    state,
						Teams:    game.TeamIDs,
						Now:      s.clock.Now(),
					})
					if err != nil {
						return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
					}
				}

				arm, err = s.applyResolution(ctx, db, game, state, res)
				if err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				// Whenever the question stays open and no watchdog was planted
				// yet, the clock restarts from the full thinking time. This
				// covers the riddle clue advance, where the timer sits in ended
				// and cannot resume from banked time.
				if !res.QuestionDone && arm == nil {
					timer, terr := s.timerRepo.GetTimer(ctx, db, game.ID)
					if terr != nil {
						return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, terr
					}
					timer.Reset(s.thinkingTime(round.ThinkingTime))
					if terr := timer.Start(s.clock.Now(), 0, false, "game"); terr != nil {
						return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, terr
					}
					if terr := s.timerRepo.SaveTimer(ctx, db, timer); terr != nil {
						return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, terr
					}
					if deadline, ok := timer.Deadline(); ok {
						arm = &timerArm{endSeq: timer.EndSeq, at: deadline}
					}
				}

				if err := s.roundRepo.UpsertQuestionState(ctx, db, state); err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.AnswerResolvedPayloadV1, events.GameCommandFailedPayloadV1](events.AnswerResolvedPayloadV1{
					GameID:         game.ID,
					RoundID:        roundID,
					QuestionID:     state.QuestionID,
					Deltas:         res.Deltas,
					QuestionStatus: state.Status,
					WinnerTeam:     res.WinnerTeam,
				}), nil
			})
			if err == nil && result.IsSuccess() {
				s.scheduleTimerEnd(ctx, payload.GameID, arm)
			}
			return result, err
		})
}
