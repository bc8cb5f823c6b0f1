package gameservice

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// StartRound enters round_start for one of the game's rounds. The chooser
// rotation is re-shuffled, the round ledger reset and the shared timer
// re-armed with the round's thinking time, all in the transition's
// transaction.
func (s *GameService) StartRound(ctx context.Context, payload events.RoundStartRequestedPayloadV1) (results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "StartRound", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				roundIdx := -1
				for i, id := range game.RoundIDs {
					if id == payload.RoundID {
						roundIdx = i
						break
					}
				}
				if roundIdx < 0 {
					return failGame[events.RoundStartedPayloadV1](payload.GameID, "StartRound", "round does not belong to this game"), nil
				}

				if err := game.Transition(types.GameStatusRoundStart); err != nil {
					return failGame[events.RoundStartedPayloadV1](payload.GameID, "StartRound", err.Error()), nil
				}

				round, err := s.roundRepo.GetRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				questions, err := s.roundRepo.GetQuestionsByRound(ctx, db, payload.RoundID)
				if err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				policy, err := s.policies.ForType(round.Type)
				if err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				maxPoints := policy.CalculateMaxPoints(round, questions)

				// Each round shuffles its own chooser order, derived from the
				// game seed so a replay is identical.
				game.Rotation = chooser.NewRotation(game.TeamIDs, randutil.NewSource(game.Seed+int64(roundIdx)+1))
				game.CurrentRoundIdx = roundIdx
				game.CurrentQuestionID = types.QuestionID{}
				game.CurrentQuestionType = round.Type

				round.CurrentQuestionIdx = -1
				if err := s.roundRepo.SaveRoundProgress(ctx, db, round); err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.scoreRepo.ResetRoundLedger(ctx, db, game.ID, game.TeamIDs); err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				timer, err := s.timerRepo.GetTimer(ctx, db, game.ID)
				if err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				timer.Reset(s.thinkingTime(round.ThinkingTime))
				if err := s.timerRepo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.RoundStartedPayloadV1, events.GameCommandFailedPayloadV1](events.RoundStartedPayloadV1{
					GameID:       game.ID,
					RoundID:      round.ID,
					ChooserOrder: game.Rotation.Order,
					MaxPoints:    maxPoints,
				}), nil
			})
		})
}

// EndRound leaves the round: each team's round-ledger total lands on the
// game ledger keyed by the round id, then the round totals are reported as
// the round's awards.
func (s *GameService) EndRound(ctx context.Context, payload events.RoundEndRequestedPayloadV1) (results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "EndRound", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := game.Transition(types.GameStatusRoundEnd); err != nil {
					return failGame[events.RoundEndedPayloadV1](payload.GameID, "EndRound", err.Error()), nil
				}

				roundLedger, err := s.scoreRepo.GetLedger(ctx, db, game.ID, events.LedgerScopeRound)
				if err != nil {
					return results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				gameLedger, err := s.scoreRepo.GetLedger(ctx, db, game.ID, events.LedgerScopeGame)
				if err != nil {
					return results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				awards := roundLedger.Totals()
				for team, total := range awards {
					if total != 0 {
						gameLedger.Scores[team] += total
					}
				}
				// One snapshot per round end keeps game-ledger histories
				// aligned across teams.
				gameLedger.Checkpoint(payload.RoundID.String())

				if err := s.scoreRepo.SaveLedger(ctx, db, game.ID, events.LedgerScopeGame, gameLedger); err != nil {
					return results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.RoundEndedPayloadV1, events.GameCommandFailedPayloadV1](events.RoundEndedPayloadV1{
					GameID:  game.ID,
					RoundID: payload.RoundID,
					Status:  game.Status,
					Awards:  awards,
				}), nil
			})
		})
}

// thinkingTime applies the configured default when the round leaves it unset.
func (s *GameService) thinkingTime(seconds int) int {
	if seconds > 0 {
		return seconds
	}
	return s.cfg.Game.DefaultThinkingTime
}
