package gameservice

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// rotationHandle adapts the game's rotation to the policies' chooser
// contract. Switch only moves the rotation when the handle was armed: the
// first question of a round and every later question advance it, a reset
// re-reads the current position instead.
type rotationHandle struct {
	rotation *chooser.Rotation
	advance  bool
}

func (h *rotationHandle) Current() types.TeamID {
	if h.rotation == nil {
		return ""
	}
	return h.rotation.Current()
}

func (h *rotationHandle) Switch(excluded []types.TeamID) (types.TeamID, error) {
	if h.rotation == nil {
		return "", chooser.ErrNoEligibleChooser
	}
	if !h.advance {
		return h.rotation.Current(), nil
	}
	h.advance = false
	return h.rotation.Switch(excluded)
}

// SwitchChooser advances the rotation by hand, skipping excluded teams.
func (s *GameService) SwitchChooser(ctx context.Context, payload events.ChooserSwitchRequestedPayloadV1) (results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "SwitchChooser", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if game.Rotation == nil {
					return failGame[events.ChooserSwitchedPayloadV1](payload.GameID, "SwitchChooser", "game has no chooser rotation"), nil
				}

				team, err := game.Rotation.Switch(payload.Excluded)
				if err != nil {
					if errors.Is(err, chooser.ErrNoEligibleChooser) {
						return failGame[events.ChooserSwitchedPayloadV1](payload.GameID, "SwitchChooser", err.Error()), nil
					}
					return results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.ChooserSwitchedPayloadV1, events.GameCommandFailedPayloadV1](events.ChooserSwitchedPayloadV1{
					GameID:     game.ID,
					TeamID:     team,
					ChooserIdx: game.Rotation.Idx,
				}), nil
			})
		})
}
