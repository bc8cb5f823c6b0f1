package gameservice

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
	timerdomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/domain"
	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// FakeGameRepository keeps games, teams and players in memory.
type FakeGameRepository struct {
	Games   map[types.GameID]*gamedomain.Game
	Teams   []*gamedomain.Team
	Players []*gamedomain.Player
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

func (f *FakeGameRepository) CreateTeam(_ context.Context, _ bun.IDB, team *gamedomain.Team) error {
	f.Teams = append(f.Teams, team)
	return nil
}

func (f *FakeGameRepository) GetTeamsByGame(_ context.Context, _ bun.IDB, gameID types.GameID) ([]*gamedomain.Team, error) {
	var out []*gamedomain.Team
	for _, team := range f.Teams {
		if team.GameID == gameID {
			out = append(out, team)
		}
	}
	return out, nil
}

func (f *FakeGameRepository) CreatePlayer(_ context.Context, _ bun.IDB, player *gamedomain.Player) error {
	f.Players = append(f.Players, player)
	return nil
}

func (f *FakeGameRepository) GetPlayersByGame(_ context.Context, _ bun.IDB, gameID types.GameID) ([]*gamedomain.Player, error) {
	var out []*gamedomain.Player
	for _, player := range f.Players {
		if player.GameID == gameID {
			out = append(out, player)
		}
	}
	return out, nil
}

func (f *FakeGameRepository) SetPlayerStatuses(_ context.Context, _ bun.IDB, gameID types.GameID, status types.PlayerStatus) error {
	for _, player := range f.Players {
		if player.GameID == gameID {
			player.Status = status
		}
	}
	return nil
}

func (f *FakeGameRepository) SetTeamPlayerStatuses(_ context.Context, _ bun.IDB, gameID types.GameID, teamID types.TeamID, status types.PlayerStatus) error {
	for _, player := range f.Players {
		if player.GameID == gameID && player.TeamID == teamID {
			player.Status = status
		}
	}
	return nil
}

func (f *FakeGameRepository) SetPlayerStatus(_ context.Context, _ bun.IDB, playerID types.PlayerID, status types.PlayerStatus) error {
	for _, player := range f.Players {
		if player.ID == playerID {
			player.Status = status
		}
	}
	return nil
}

// PlayerStatus reads back one player's stored status.
func (f *FakeGameRepository) PlayerStatus(playerID types.PlayerID) types.PlayerStatus {
	for _, player := range f.Players {
		if player.ID == playerID {
			return player.Status
		}
	}
	return ""
}

// FakeRoundRepository keeps rounds, questions and question states in memory.
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

func (f *FakeRoundRepository) UpsertQuestionState(_ context.Context, _ bun.IDB, state *rounddomain.QuestionState) error {
	f.States[stateKey(state.GameID, state.QuestionID)] = state
	return nil
}

func (f *FakeRoundRepository) GetQuestionState(_ context.Context, _ bun.IDB, gameID types.GameID, questionID types.QuestionID) (*rounddomain.QuestionState, error) {
	state, ok := f.States[stateKey(gameID, questionID)]
	if !ok {
		return nil, gameerr.NewNotFound("question state", questionID.String())
	}
	return state, nil
}

func (f *FakeRoundRepository) GetActiveQuestionState(_ context.Context, _ bun.IDB, gameID types.GameID) (*rounddomain.QuestionState, error) {
	for _, state := range f.States {
		if state.GameID == gameID && state.Status == types.QuestionStatusActive {
			return state, nil
		}
	}
	return nil, gameerr.NewNotFound("question state", gameID.String())
}

func (f *FakeRoundRepository) DeleteQuestionStates(_ context.Context, _ bun.IDB, gameID types.GameID) error {
	for key, state := range f.States {
		if state.GameID == gameID {
			delete(f.States, key)
		}
	}
	return nil
}

// FakeLedgerRepository keeps both scopes' ledgers in memory.
type FakeLedgerRepository struct {
	Ledgers map[string]*scoredomain.Ledger
}

var _ scoredb.Repository = (*FakeLedgerRepository)(nil)

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{Ledgers: map[string]*scoredomain.Ledger{}}
}

func ledgerKey(gameID types.GameID, scope events.LedgerScope) string {
	return fmt.Sprintf("%s/%s", gameID, scope)
}

func (f *FakeLedgerRepository) CreateLedgers(_ context.Context, _ bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	f.Ledgers[ledgerKey(gameID, events.LedgerScopeRound)] = scoredomain.NewLedger(teams)
	f.Ledgers[ledgerKey(gameID, events.LedgerScopeGame)] = scoredomain.NewLedger(teams)
	return nil
}

func (f *FakeLedgerRepository) GetLedger(_ context.Context, _ bun.IDB, gameID types.GameID, scope events.LedgerScope) (*scoredomain.Ledger, error) {
	ledger, ok := f.Ledgers[ledgerKey(gameID, scope)]
	if !ok {
		return nil, gameerr.NewNotFound("ledger", ledgerKey(gameID, scope))
	}
	return ledger, nil
}

func (f *FakeLedgerRepository) SaveLedger(_ context.Context, _ bun.IDB, gameID types.GameID, scope events.LedgerScope, ledger *scoredomain.Ledger) error {
	f.Ledgers[ledgerKey(gameID, scope)] = ledger
	return nil
}

func (f *FakeLedgerRepository) ResetRoundLedger(_ context.Context, _ bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	f.Ledgers[ledgerKey(gameID, events.LedgerScopeRound)] = scoredomain.NewLedger(teams)
	return nil
}

// FakeTimerRepository keeps timers in memory.
type FakeTimerRepository struct {
	Timers map[types.GameID]*timerdomain.Timer
}

var _ timerdb.Repository = (*FakeTimerRepository)(nil)

func NewFakeTimerRepository() *FakeTimerRepository {
	return &FakeTimerRepository{Timers: map[types.GameID]*timerdomain.Timer{}}
}

func (f *FakeTimerRepository) CreateTimer(_ context.Context, _ bun.IDB, timer *timerdomain.Timer) error {
	cp := *timer
	f.Timers[timer.GameID] = &cp
	return nil
}

func (f *FakeTimerRepository) GetTimer(_ context.Context, _ bun.IDB, gameID types.GameID) (*timerdomain.Timer, error) {
	timer, ok := f.Timers[gameID]
	if !ok {
		return nil, gameerr.NewNotFound("timer", gameID.String())
	}
	cp := *timer
	return &cp, nil
}

func (f *FakeTimerRepository) SaveTimer(_ context.Context, _ bun.IDB, timer *timerdomain.Timer) error {
	cp := *timer
	f.Timers[timer.GameID] = &cp
	return nil
}

// FakeTimerScheduler records watchdogs instead of planting river jobs.
type FakeTimerScheduler struct {
	Scheduled []ScheduledEnd
}

type ScheduledEnd struct {
	GameID types.GameID
	EndSeq int64
	At     time.Time
}

func (f *FakeTimerScheduler) ScheduleTimerEnd(_ context.Context, gameID types.GameID, endSeq int64, at time.Time) error {
	f.Scheduled = append(f.Scheduled, ScheduledEnd{GameID: gameID, EndSeq: endSeq, At: at})
	return nil
}

// FakeStartScheduler records deferred lobby opens.
type FakeStartScheduler struct {
	Scheduled []ScheduledStart
}

type ScheduledStart struct {
	GameID types.GameID
	At     time.Time
}

func (f *FakeStartScheduler) ScheduleGameStart(_ context.Context, gameID types.GameID, at time.Time) error {
	f.Scheduled = append(f.Scheduled, ScheduledStart{GameID: gameID, At: at})
	return nil
}
