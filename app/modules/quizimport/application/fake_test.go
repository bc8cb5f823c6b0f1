package quizimportservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// FakeGameRepository keeps games in memory. Teams and players are not touched
// by imports.
type FakeGameRepository struct {
	Games map[types.GameID]*gamedomain.Game
}

var _ gamedb.Repository = (*FakeGameRepository)(nil)

func NewFakeGameRepository() *FakeGameRepository {
	return &FakeGameRepository{Games: map[types.GameID]*gamedomain.Game{}}
}

func (f *FakeGameRepository) CreateGame(_ context.Context, _ bun.IDB, game *gamedomain.Game) error {
	f.Games[game.ID] = game
	return nil
}

func (f *FakeGameRepository) GetGame(_ context.Context, _ bun.IDB, gameID types.GameID) (*gamedomain.Game, error) {
	game, ok := f.Games[gameID]
	if !ok {
		return nil, gameerr.NewNotFound("game", gameID.String())
	}
	return game, nil
}

func (f *FakeGameRepository) SaveGame(_ context.Context, _ bun.IDB, game *gamedomain.Game) error {
	f.Games[game.ID] = game
	return nil
}

func (f *FakeGameRepository) CreateTeam(_ context.Context, _ bun.IDB, _ *gamedomain.Team) error {
	return nil
}

func (f *FakeGameRepository) GetTeamsByGame(_ context.Context, _ bun.IDB, _ types.GameID) ([]*gamedomain.Team, error) {
	return nil, nil
}

func (f *FakeGameRepository) CreatePlayer(_ context.Context, _ bun.IDB, _ *gamedomain.Player) error {
	return nil
}

func (f *FakeGameRepository) GetPlayersByGame(_ context.Context, _ bun.IDB, _ types.GameID) ([]*gamedomain.Player, error) {
	return nil, nil
}

func (f *FakeGameRepository) SetPlayerStatuses(_ context.Context, _ bun.IDB, _ types.GameID, _ types.PlayerStatus) error {
	return nil
}

func (f *FakeGameRepository) SetTeamPlayerStatuses(_ context.Context, _ bun.IDB, _ types.GameID, _ types.TeamID, _ types.PlayerStatus) error {
	return nil
}

func (f *FakeGameRepository) SetPlayerStatus(_ context.Context, _ bun.IDB, _ types.PlayerID, _ types.PlayerStatus) error {
	return nil
}

// FakeRoundRepository keeps created rounds and questions in memory.
type FakeRoundRepository struct {
	Rounds    map[types.RoundID]*rounddomain.Round
	Questions map[types.QuestionID]*rounddomain.Question
}

var _ rounddb.Repository = (*FakeRoundRepository)(nil)

func NewFakeRoundRepository() *FakeRoundRepository {
	return &FakeRoundRepository{
		Rounds:    map[types.RoundID]*rounddomain.Round{},
		Questions: map[types.QuestionID]*rounddomain.Question{},
	}
}

func (f *FakeRoundRepository) CreateRound(_ context.Context, _ bun.IDB, round *rounddomain.Round, _ int) error {
	f.Rounds[round.ID] = round
	return nil
}

func (f *FakeRoundRepository) GetRound(_ context.Context, _ bun.IDB, roundID types.RoundID) (*rounddomain.Round, error) {
	round, ok := f.Rounds[roundID]
	if !ok {
		return nil, gameerr.NewNotFound("round", roundID.String())
	}
	return round, nil
}

func (f *FakeRoundRepository) GetRoundsByGame(_ context.Context, _ bun.IDB, gameID types.GameID) ([]*rounddomain.Round, error) {
	var out []*rounddomain.Round
	for _, round := range f.Rounds {
		if round.GameID == gameID {
			out = append(out, round)
		}
	}
	return out, nil
}

func (f *FakeRoundRepository) SaveRoundProgress(_ context.Context, _ bun.IDB, round *rounddomain.Round) error {
	f.Rounds[round.ID] = round
	return nil
}

func (f *FakeRoundRepository) CreateQuestion(_ context.Context, _ bun.IDB, question *rounddomain.Question, _ int) error {
	f.Questions[question.ID] = question
	return nil
}

func (f *FakeRoundRepository) GetQuestion(_ context.Context, _ bun.IDB, questionID types.QuestionID) (*rounddomain.Question, error) {
	question, ok := f.Questions[questionID]
	if !ok {
		return nil, gameerr.NewNotFound("question", questionID.String())
	}
	return question, nil
}

func (f *FakeRoundRepository) GetQuestionsByRound(_ context.Context, _ bun.IDB, roundID types.RoundID) ([]*rounddomain.Question, error) {
	round, ok := f.Rounds[roundID]
	if !ok {
		return nil, gameerr.NewNotFound("round", roundID.String())
	}
	out := make([]*rounddomain.Question, 0, len(round.QuestionIDs))
	for _, id := range round.QuestionIDs {
		if q, ok := f.Questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *FakeRoundRepository) UpsertQuestionState(_ context.Context, _ bun.IDB, _ *rounddomain.QuestionState) error {
	return fmt.Errorf("not supported by import fakes")
}

func (f *FakeRoundRepository) GetQuestionState(_ context.Context, _ bun.IDB, _ types.GameID, questionID types.QuestionID) (*rounddomain.QuestionState, error) {
	return nil, gameerr.NewNotFound("question state", questionID.String())
}

func (f *FakeRoundRepository) GetActiveQuestionState(_ context.Context, _ bun.IDB, gameID types.GameID) (*rounddomain.QuestionState, error) {
	return nil, gameerr.NewNotFound("question state", gameID.String())
}

func (f *FakeRoundRepository) DeleteQuestionStates(_ context.Context, _ bun.IDB, _ types.GameID) error {
	return nil
}
