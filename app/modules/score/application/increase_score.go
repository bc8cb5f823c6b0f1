package scoreservice

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// IncreaseTeamScore applies one delta to the addressed ledger and snapshots
// every team's progress. An empty team id with zero points is a checkpoint:
// totals stay put but every history gains a point under the scope key.
func (s *ScoreService) IncreaseTeamScore(ctx context.Context, payload events.ScoreIncreaseRequestedPayloadV1) (results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "IncreaseTeamScore", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1], error) {
			if payload.Scope != events.LedgerScopeRound && payload.Scope != events.LedgerScopeGame {
				return results.Fail[events.ScoreIncreasedPayloadV1](events.ScoreCommandFailedPayloadV1{
					GameID:  payload.GameID,
					Command: "IncreaseTeamScore",
					Reason:  "unknown ledger scope: " + string(payload.Scope),
				}), nil
			}

			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1], error) {
				ledger, err := s.repo.GetLedger(ctx, db, payload.GameID, payload.Scope)
				if err != nil {
					return results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1]{}, err
				}

				delta := types.ScoreDelta{TeamID: payload.TeamID, Points: payload.Points}
				ledger.Apply(delta, payload.ScopeKey)

				if err := s.repo.SaveLedger(ctx, db, payload.GameID, payload.Scope, ledger); err != nil {
					return results.OperationResult[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.ScoreIncreasedPayloadV1, events.ScoreCommandFailedPayloadV1](events.ScoreIncreasedPayloadV1{
					GameID:   payload.GameID,
					Scope:    payload.Scope,
					ScopeKey: payload.ScopeKey,
					TeamID:   payload.TeamID,
					Points:   payload.Points,
					Totals:   ledger.Totals(),
				}), nil
			})
		})
}
