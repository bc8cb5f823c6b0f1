package gamedb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Game is the persisted session.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID                  types.GameID      `bun:"id,pk,type:uuid"`
	Status              types.GameStatus  `bun:"status,notnull"`
	TeamIDs             []types.TeamID    `bun:"team_ids,type:jsonb"`
	RoundIDs            []types.RoundID   `bun:"round_ids,type:jsonb"`
	CurrentRoundIdx     int               `bun:"current_round_idx,notnull,default:-1"`
	CurrentQuestionID   types.QuestionID  `bun:"current_question_id,nullzero,type:uuid"`
	CurrentQuestionType types.RoundType   `bun:"current_question_type"`
	Seed                int64             `bun:"seed,notnull,default:0"`
	Rotation            *chooser.Rotation `bun:"rotation,type:jsonb"`
	SpecialRoundID      *types.RoundID    `bun:"special_round_id,type:uuid"`
	ScheduledStartAt    *time.Time        `bun:"scheduled_start_at"`
	CreatedAt           time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Team is the persisted scoring unit.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	ID        types.TeamID `bun:"id,pk"`
	GameID    types.GameID `bun:"game_id,notnull,type:uuid"`
	Name      string       `bun:"name,notnull"`
	Color     string       `bun:"color"`
	CreatedAt time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Player is one registered participant.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        types.PlayerID     `bun:"id,pk"`
	GameID    types.GameID       `bun:"game_id,notnull,type:uuid"`
	TeamID    types.TeamID       `bun:"team_id,notnull"`
	Name      string             `bun:"name,notnull"`
	Status    types.PlayerStatus `bun:"status,notnull"`
	CreatedAt time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func gameToDomain(row *Game) *gamedomain.Game {
	return &gamedomain.Game{
		ID:                  row.ID,
		Status:              row.Status,
		TeamIDs:             row.TeamIDs,
		RoundIDs:            row.RoundIDs,
		CurrentRoundIdx:     row.CurrentRoundIdx,
		CurrentQuestionID:   row.CurrentQuestionID,
		CurrentQuestionType: row.CurrentQuestionType,
		Seed:                row.Seed,
		Rotation:            row.Rotation,
		SpecialRoundID:      row.SpecialRoundID,
		ScheduledStartAt:    row.ScheduledStartAt,
	}
}

func gameFromDomain(game *gamedomain.Game) *Game {
	return &Game{
		ID:                  game.ID,
		Status:              game.Status,
		TeamIDs:             game.TeamIDs,
		RoundIDs:            game.RoundIDs,
		CurrentRoundIdx:     game.CurrentRoundIdx,
		CurrentQuestionID:   game.CurrentQuestionID,
		CurrentQuestionType: game.CurrentQuestionType,
		Seed:                game.Seed,
		Rotation:            game.Rotation,
		SpecialRoundID:      game.SpecialRoundID,
		ScheduledStartAt:    game.ScheduledStartAt,
	}
}

func teamToDomain(row *Team) *gamedomain.Team {
	return &gamedomain.Team{ID: row.ID, GameID: row.GameID, Name: row.Name, Color: row.Color}
}

func playerToDomain(row *Player) *gamedomain.Player {
	return &gamedomain.Player{ID: row.ID, GameID: row.GameID, TeamID: row.TeamID, Name: row.Name, Status: row.Status}
}
