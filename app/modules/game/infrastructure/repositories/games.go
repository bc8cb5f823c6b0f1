package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Repository is the game persistence contract. Methods accept a bun.IDB so
// callers can pass the surrounding transaction; nil falls back to the pool.
type Repository interface {
	CreateGame(ctx context.Context, db bun.IDB, game *gamedomain.Game) error
	GetGame(ctx context.Context, db bun.IDB, gameID types.GameID) (*gamedomain.Game, error)
	SaveGame(ctx context.Context, db bun.IDB, game *gamedomain.Game) error

	CreateTeam(ctx context.Context, db bun.IDB, team *gamedomain.Team) error
	GetTeamsByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*gamedomain.Team, error)

	CreatePlayer(ctx context.Context, db bun.IDB, player *gamedomain.Player) error
	GetPlayersByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*gamedomain.Player, error)
	SetPlayerStatuses(ctx context.Context, db bun.IDB, gameID types.GameID, status types.PlayerStatus) error
	SetTeamPlayerStatuses(ctx context.Context, db bun.IDB, gameID types.GameID, teamID types.TeamID, status types.PlayerStatus) error
	SetPlayerStatus(ctx context.Context, db bun.IDB, playerID types.PlayerID, status types.PlayerStatus) error
}

// GameDBImpl is the bun-backed Repository.
type GameDBImpl struct {
	DB *bun.DB
}

func (r *GameDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *GameDBImpl) CreateGame(ctx context.Context, db bun.IDB, game *gamedomain.Game) error {
	if _, err := r.idb(db).NewInsert().Model(gameFromDomain(game)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *GameDBImpl) GetGame(ctx context.Context, db bun.IDB, gameID types.GameID) (*gamedomain.Game, error) {
	var row Game
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("g.id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gameerr.NewNotFound("game", gameID.String())
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return gameToDomain(&row), nil
}

func (r *GameDBImpl) SaveGame(ctx context.Context, db bun.IDB, game *gamedomain.Game) error {
	row := gameFromDomain(game)
	_, err := r.idb(db).NewUpdate().
		Model(row).
		WherePK().
		Set("status = ?", row.Status).
		Set("team_ids = ?", row.TeamIDs).
		Set("round_ids = ?", row.RoundIDs).
		Set("current_round_idx = ?", row.CurrentRoundIdx).
		Set("current_question_id = ?", row.CurrentQuestionID).
		Set("current_question_type = ?", row.CurrentQuestionType).
		Set("rotation = ?", row.Rotation).
		Set("special_round_id = ?", row.SpecialRoundID).
		Set("scheduled_start_at = ?", row.ScheduledStartAt).
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (r *GameDBImpl) CreateTeam(ctx context.Context, db bun.IDB, team *gamedomain.Team) error {
	row := &Team{ID: team.ID, GameID: team.GameID, Name: team.Name, Color: team.Color}
	if _, err := r.idb(db).NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *GameDBImpl) GetTeamsByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*gamedomain.Team, error) {
	var rows []Team
	err := r.idb(db).NewSelect().
		Model(&rows).
		Where("tm.game_id = ?", gameID).
		Order("tm.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	teams := make([]*gamedomain.Team, len(rows))
	for i := range rows {
		teams[i] = teamToDomain(&rows[i])
	}
	return teams, nil
}

func (r *GameDBImpl) CreatePlayer(ctx context.Context, db bun.IDB, player *gamedomain.Player) error {
	row := &Player{ID: player.ID, GameID: player.GameID, TeamID: player.TeamID, Name: player.Name, Status: player.Status}
	if _, err := r.idb(db).NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *GameDBImpl) GetPlayersByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*gamedomain.Player, error) {
	var rows []Player
	err := r.idb(db).NewSelect().
		Model(&rows).
		Where("p.game_id = ?", gameID).
		Order("p.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	players := make([]*gamedomain.Player, len(rows))
	for i := range rows {
		players[i] = playerToDomain(&rows[i])
	}
	return players, nil
}

// SetPlayerStatuses resets every player of the game to one status, used when
// a question starts.
func (r *GameDBImpl) SetPlayerStatuses(ctx context.Context, db bun.IDB, gameID types.GameID, status types.PlayerStatus) error {
	_, err := r.idb(db).NewUpdate().
		Model((*Player)(nil)).
		Set("status = ?", status).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set player statuses: %w", err)
	}
	return nil
}

// SetTeamPlayerStatuses moves every player of one team to the status, used to
// put the chooser team in focus when a question starts.
func (r *GameDBImpl) SetTeamPlayerStatuses(ctx context.Context, db bun.IDB, gameID types.GameID, teamID types.TeamID, status types.PlayerStatus) error {
	_, err := r.idb(db).NewUpdate().
		Model((*Player)(nil)).
		Set("status = ?", status).
		Where("game_id = ?", gameID).
		Where("team_id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set team player statuses: %w", err)
	}
	return nil
}

// SetPlayerStatus moves one player to the status, used to mark the buzzer
// head ready.
func (r *GameDBImpl) SetPlayerStatus(ctx context.Context, db bun.IDB, playerID types.PlayerID, status types.PlayerStatus) error {
	_, err := r.idb(db).NewUpdate().
		Model((*Player)(nil)).
		Set("status = ?", status).
		Where("id = ?", playerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set player status: %w", err)
	}
	return nil
}
