package gameservice

import (
	"context"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	timerdomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// CreateGame registers a session with its teams and players. The game starts
// in game_edit so question sets can still be imported; OpenGame launches it.
func (s *GameService) CreateGame(ctx context.Context, payload events.GameCreateRequestedPayloadV1) (results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	gameID := types.NewGameID()
	return withTelemetry(s, ctx, "CreateGame", gameID,
		func(ctx context.Context) (results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			if len(payload.Teams) == 0 {
				return failGame[events.GameCreatedPayloadV1](gameID, "CreateGame", "a game needs at least one team"), nil
			}
			for _, team := range payload.Teams {
				if err := gamedomain.ValidateTeamName(team.Name, s.cfg.Game.MaxTeamNameLength); err != nil {
					return failGame[events.GameCreatedPayloadV1](gameID, "CreateGame", err.Error()), nil
				}
			}

			teamIDs := make([]types.TeamID, len(payload.Teams))
			for i, team := range payload.Teams {
				teamIDs[i] = team.ID
			}
			game := gamedomain.NewGame(gameID, teamIDs, payload.RoundIDs, payload.Seed)
			game.SpecialRoundID = payload.SpecialRoundID

			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				if err := s.repo.CreateGame(ctx, db, game); err != nil {
					return results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				for _, setup := range payload.Teams {
					team := &gamedomain.Team{ID: setup.ID, GameID: gameID, Name: setup.Name, Color: setup.Color}
					if err := s.repo.CreateTeam(ctx, db, team); err != nil {
						return results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
					}
					for _, ps := range setup.Players {
						player := &gamedomain.Player{ID: ps.ID, GameID: gameID, TeamID: setup.ID, Name: ps.Name, Status: types.PlayerStatusIdle}
						if err := s.repo.CreatePlayer(ctx, db, player); err != nil {
							return results.OperationResult[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
						}
					}
				}
				return results.Succeed[events.GameCreatedPayloadV1, events.GameCommandFailedPayloadV1](events.GameCreatedPayloadV1{
					GameID: gameID,
					Status: game.Status,
				}), nil
			})
		})
}

// OpenGame opens the lobby: game_start -> game_home. A game opened straight
// from authoring passes through game_start, which closes it to imports. It
// arms the shared timer, creates both ledgers and seeds the chooser rotation,
// all in the transition's transaction.
func (s *GameService) OpenGame(ctx context.Context, payload events.GameOpenRequestedPayloadV1) (results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "OpenGame", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if game.Status == types.GameStatusEdit {
					if err := game.Transition(types.GameStatusStart); err != nil {
						return failGame[events.GameOpenedPayloadV1](payload.GameID, "OpenGame", err.Error()), nil
					}
				}
				if err := game.Transition(types.GameStatusHome); err != nil {
					return failGame[events.GameOpenedPayloadV1](payload.GameID, "OpenGame", err.Error()), nil
				}

				game.Rotation = chooser.NewRotation(game.TeamIDs, randutil.NewSource(game.Seed))

				timer := timerdomain.NewTimer(game.ID, s.cfg.Game.DefaultThinkingTime)
				if err := s.timerRepo.CreateTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.scoreRepo.CreateLedgers(ctx, db, game.ID, game.TeamIDs); err != nil {
					return results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.GameOpenedPayloadV1, events.GameCommandFailedPayloadV1](events.GameOpenedPayloadV1{
					GameID: game.ID,
					Status: game.Status,
				}), nil
			})
		})
}

// ScheduleGame parses a natural-language start time and enqueues the lobby
// open for that moment.
func (s *GameService) ScheduleGame(ctx context.Context, payload events.GameScheduleRequestedPayloadV1) (results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ScheduleGame", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1], error) {
			startAt, err := s.parseStartTime(payload.StartTimeText, payload.Timezone)
			if err != nil {
				return failGame[events.GameScheduledPayloadV1](payload.GameID, "ScheduleGame", err.Error()), nil
			}

			result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if game.Status != types.GameStatusEdit && game.Status != types.GameStatusStart {
					return failGame[events.GameScheduledPayloadV1](payload.GameID, "ScheduleGame",
						fmt.Sprintf("game is %s, only unopened games can be scheduled", game.Status)), nil
				}
				game.ScheduledStartAt = &startAt
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				return results.Succeed[events.GameScheduledPayloadV1, events.GameCommandFailedPayloadV1](events.GameScheduledPayloadV1{
					GameID:  payload.GameID,
					StartAt: startAt,
				}), nil
			})
			if err != nil || result.IsFailure() {
				return result, err
			}

			if s.startScheduler != nil {
				if err := s.startScheduler.ScheduleGameStart(ctx, payload.GameID, startAt); err != nil {
					s.logger.ErrorContext(ctx, "Failed to enqueue scheduled game start",
						attr.GameID("game_id", payload.GameID),
						attr.Error(err),
					)
				}
			}
			return result, nil
		})
}

// parseStartTime resolves "friday 8pm" style input against the clock. An
// empty timezone means UTC.
func (s *GameService) parseStartTime(text, timezone string) (time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, gameerr.NewInvalidCommand("unknown timezone %q", timezone)
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	now := s.clock.Now().In(loc)
	r, err := w.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, gameerr.NewInvalidCommand("could not parse start time %q", text)
	}
	if !r.Time.After(now) {
		return time.Time{}, gameerr.NewInvalidCommand("start time must be in the future")
	}
	return r.Time.UTC(), nil
}

// EndGame freezes the session and reports the final game-ledger totals.
func (s *GameService) EndGame(ctx context.Context, payload events.GameEndRequestedPayloadV1) (results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "EndGame", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1], error) {
				game, err := s.repo.GetGame(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				if err := game.Transition(types.GameStatusEnd); err != nil {
					return failGame[events.GameEndedPayloadV1](payload.GameID, "EndGame", err.Error()), nil
				}

				ledger, err := s.scoreRepo.GetLedger(ctx, db, game.ID, events.LedgerScopeGame)
				if err != nil {
					return results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}
				if err := s.repo.SaveGame(ctx, db, game); err != nil {
					return results.OperationResult[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.GameEndedPayloadV1, events.GameCommandFailedPayloadV1](events.GameEndedPayloadV1{
					GameID: game.ID,
					Totals: ledger.Totals(),
				}), nil
			})
		})
}
