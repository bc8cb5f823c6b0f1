package buzzerservice

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

// FakeGameRepository records player statuses. The buzzer operations only
// touch the status columns, so games and teams need no backing storage here.
type FakeGameRepository struct {
	Statuses map[types.PlayerID]types.PlayerStatus
}

var _ gamedb.Repository = (*FakeGameRepository)(nil)

func NewFakeGameRepository() *FakeGameRepository {
	return &FakeGameRepository{Statuses: map[types.PlayerID]types.PlayerStatus{}}
}

func (f *FakeGameRepository) CreateGame(_ context.Context, _ bun.IDB, _ *gamedomain.Game) error {
	return nil
}

func (f *FakeGameRepository) GetGame(_ context.Context, _ bun.IDB, gameID types.GameID) (*gamedomain.Game, error) {
	return nil, &gameerr.NotFoundError{Kind: "game", ID: gameID.String()}
}

func (f *FakeGameRepository) SaveGame(_ context.Context, _ bun.IDB, _ *gamedomain.Game) error {
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

func (f *FakeGameRepository) SetPlayerStatuses(_ context.Context, _ bun.IDB, _ types.GameID, status types.PlayerStatus) error {
	for id := range f.Statuses {
		f.Statuses[id] = status
	}
	return nil
}

func (f *FakeGameRepository) SetTeamPlayerStatuses(_ context.Context, _ bun.IDB, _ types.GameID, _ types.TeamID, _ types.PlayerStatus) error {
	return nil
}

func (f *FakeGameRepository) SetPlayerStatus(_ context.Context, _ bun.IDB, playerID types.PlayerID, status types.PlayerStatus) error {
	f.Statuses[playerID] = status
	return nil
}

// FakeRoundRepository keeps rounds, questions and question states in memory.
// States are copied on read and write so tests observe only committed values.
type FakeRoundRepository struct {
	Rounds    map[types.RoundID]*rounddomain.Round
	Questions map[types.QuestionID]*rounddomain.Question
	States    map[string]*rounddomain.QuestionState
}

var _ rounddb.Repository = (*FakeRoundRepository)(nil)

func NewFakeRoundRepository() *FakeRoundRepository {
	return &FakeRoundRepository{
		Rounds:    map[types.RoundID]*rounddomain.Round{},
		Questions: map[types.QuestionID]*rounddomain.Question{},
		States:    map[string]*rounddomain.QuestionState{},
	}
}

func stateKey(gameID types.GameID, questionID types.QuestionID) string {
	return fmt.Sprintf("%s/%s", gameID, questionID)
}

func copyState(s *rounddomain.QuestionState) *rounddomain.QuestionState {
	c := *s
	c.Buzzed = append([]types.BuzzEntry{}, s.Buzzed...)
	c.Canceled = append([]types.CancelEntry{}, s.Canceled...)
	c.Revealed = append([]int{}, s.Revealed...)
	c.Eliminated = append([]types.TeamID{}, s.Eliminated...)
	c.Citations = append([]string{}, s.Citations...)
	c.Tries = map[types.TeamID]int{}
	for k, v := range s.Tries {
		c.Tries[k] = v
	}
	c.Tallies = map[types.TeamID]int{}
	for k, v := range s.Tallies {
		c.Tallies[k] = v
	}
	return &c
}

func (f *FakeRoundRepository) CreateRound(ctx context.Context, db bun.IDB, round *rounddomain.Round, position int) error {
	f.Rounds[round.ID] = round
	return nil
}

func (f *FakeRoundRepository) GetRound(ctx context.Context, db bun.IDB, roundID types.RoundID) (*rounddomain.Round, error) {
	round, ok := f.Rounds[roundID]
	if !ok {
		return nil, &gameerr.NotFoundError{Kind: "round", ID: roundID.String()}
	}
	return round, nil
}

func (f *FakeRoundRepository) GetRoundsByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*rounddomain.Round, error) {
	var out []*rounddomain.Round
	for _, round := range f.Rounds {
		if round.GameID == gameID {
			out = append(out, round)
		}
	}
	return out, nil
}

func (f *FakeRoundRepository) SaveRoundProgress(ctx context.Context, db bun.IDB, round *rounddomain.Round) error {
	f.Rounds[round.ID] = round
	return nil
}

func (f *FakeRoundRepository) CreateQuestion(ctx context.Context, db bun.IDB, question *rounddomain.Question, position int) error {
	f.Questions[question.ID] = question
	return nil
}

func (f *FakeRoundRepository) GetQuestion(ctx context.Context, db bun.IDB, questionID types.QuestionID) (*rounddomain.Question, error) {
	q, ok := f.Questions[questionID]
	if !ok {
		return nil, &gameerr.NotFoundError{Kind: "question", ID: questionID.String()}
	}
	return q, nil
}

func (f *FakeRoundRepository) GetQuestionsByRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]*rounddomain.Question, error) {
	var out []*rounddomain.Question
	for _, q := range f.Questions {
		if q.RoundID == roundID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *FakeRoundRepository) UpsertQuestionState(ctx context.Context, db bun.IDB, state *rounddomain.QuestionState) error {
	f.States[stateKey(state.GameID, state.QuestionID)] = copyState(state)
	return nil
}

func (f *FakeRoundRepository) GetQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID, questionID types.QuestionID) (*rounddomain.QuestionState, error) {
	state, ok := f.States[stateKey(gameID, questionID)]
	if !ok {
		return nil, &gameerr.NotFoundError{Kind: "question state", ID: questionID.String()}
	}
	return copyState(state), nil
}

func (f *FakeRoundRepository) GetActiveQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID) (*rounddomain.QuestionState, error) {
	for _, state := range f.States {
		if state.GameID == gameID && state.Status == types.QuestionStatusActive {
			return copyState(state), nil
		}
	}
	return nil, &gameerr.NotFoundError{Kind: "question state", ID: gameID.String()}
}

func (f *FakeRoundRepository) DeleteQuestionStates(ctx context.Context, db bun.IDB, gameID types.GameID) error {
	for key, state := range f.States {
		if state.GameID == gameID {
			delete(f.States, key)
		}
	}
	return nil
}
