// Package gamedomain models the game session: the top-level lifecycle state
// machine, the team and player registry, and the chooser rotation snapshot.
package gamedomain

import (
	"strings"
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/modules/chooser"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Game is one session. Status moves only along the transition table below;
// every move commits in the transaction that triggered it.
type Game struct {
	ID     types.GameID
	Status types.GameStatus

	TeamIDs  []types.TeamID
	RoundIDs []types.RoundID

	// CurrentRoundIdx indexes RoundIDs, -1 before the first round.
	CurrentRoundIdx     int
	CurrentQuestionID   types.QuestionID
	CurrentQuestionType types.RoundType

	// Seed drives every shuffle in the session, so a game replays
	// identically under the same seed.
	Seed     int64
	Rotation *chooser.Rotation

	// SpecialRoundID is the optional bonus round entered from round_end.
	SpecialRoundID   *types.RoundID
	ScheduledStartAt *time.Time
}

// NewGame creates a session in game_edit: question sets can still be
// imported until the game launches into game_start.
func NewGame(id types.GameID, teams []types.TeamID, rounds []types.RoundID, seed int64) *Game {
	return &Game{
		ID:              id,
		Status:          types.GameStatusEdit,
		TeamIDs:         teams,
		RoundIDs:        rounds,
		CurrentRoundIdx: -1,
		Seed:            seed,
	}
}

// legalTransitions maps each status to the statuses reachable from it.
var legalTransitions = map[types.GameStatus][]types.GameStatus{
	types.GameStatusEdit:           {types.GameStatusStart},
	types.GameStatusStart:          {types.GameStatusHome},
	types.GameStatusHome:           {types.GameStatusRoundStart, types.GameStatusEnd},
	types.GameStatusRoundStart:     {types.GameStatusQuestionActive, types.GameStatusRoundEnd},
	types.GameStatusQuestionActive: {types.GameStatusQuestionEnd},
	types.GameStatusQuestionEnd:    {types.GameStatusQuestionActive, types.GameStatusRoundEnd},
	types.GameStatusRoundEnd:       {types.GameStatusRoundStart, types.GameStatusSpecialHome, types.GameStatusEnd},
	types.GameStatusSpecialHome:    {types.GameStatusSpecialActive, types.GameStatusEnd},
	types.GameStatusSpecialActive:  {types.GameStatusSpecialHome, types.GameStatusEnd},
	types.GameStatusEnd:            {},
}

// CanTransition reports whether to is reachable from the current status.
func (g *Game) CanTransition(to types.GameStatus) bool {
	for _, next := range legalTransitions[g.Status] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the game to the target status or fails with an
// InvalidTransitionError, leaving the status untouched.
func (g *Game) Transition(to types.GameStatus) error {
	if !g.CanTransition(to) {
		return &gameerr.InvalidTransitionError{Entity: "game", From: string(g.Status), To: string(to)}
	}
	g.Status = to
	return nil
}

// InSpecial reports whether the session is in the bonus-round branch.
func (g *Game) InSpecial() bool {
	return g.Status == types.GameStatusSpecialHome || g.Status == types.GameStatusSpecialActive
}

// ActiveStatus is question_active or its special-branch equivalent.
func (g *Game) ActiveStatus() types.GameStatus {
	if g.InSpecial() {
		return types.GameStatusSpecialActive
	}
	return types.GameStatusQuestionActive
}

// RestingStatus is question_end or its special-branch equivalent.
func (g *Game) RestingStatus() types.GameStatus {
	if g.InSpecial() {
		return types.GameStatusSpecialHome
	}
	return types.GameStatusQuestionEnd
}

// CurrentRoundID returns the round the game is in, if any.
func (g *Game) CurrentRoundID() (types.RoundID, bool) {
	if g.InSpecial() && g.SpecialRoundID != nil {
		return *g.SpecialRoundID, true
	}
	if g.CurrentRoundIdx < 0 || g.CurrentRoundIdx >= len(g.RoundIDs) {
		return types.RoundID{}, false
	}
	return g.RoundIDs[g.CurrentRoundIdx], true
}

// RoundsExhausted reports whether the last regular round has been entered.
func (g *Game) RoundsExhausted() bool {
	return g.CurrentRoundIdx >= len(g.RoundIDs)-1
}

// Team is one scoring unit of a game.
type Team struct {
	ID     types.TeamID
	GameID types.GameID
	Name   string
	Color  string
}

// Player belongs to a team. Status reflects the affordance the client shows.
type Player struct {
	ID     types.PlayerID
	GameID types.GameID
	TeamID types.TeamID
	Name   string
	Status types.PlayerStatus
}

// ValidateTeamName enforces the configured name length limit.
func ValidateTeamName(name string, maxLen int) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &gameerr.ValidationError{Field: "team name", Reason: "must not be empty"}
	}
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return &gameerr.ValidationError{Field: "team name", Reason: "exceeds maximum length"}
	}
	return nil
}
