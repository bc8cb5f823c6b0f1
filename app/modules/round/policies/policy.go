// Package policies implements the per-round-type rules: how a question
// starts, how answers score, and what the type's point ceiling is. Policies
// are pure over the realtime sub-state; the game orchestrator owns the
// transaction and applies the deltas they return.
package policies

import (
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// ChooserHandle is the slice of the chooser rotation a policy may drive.
type ChooserHandle interface {
	Current() types.TeamID
	Switch(excluded []types.TeamID) (types.TeamID, error)
}

// PrepareContext carries everything a policy may touch when a question
// starts. State is mutated in place; the orchestrator persists it.
type PrepareContext struct {
	Round    *rounddomain.Round
	Question *rounddomain.Question
	State    *rounddomain.QuestionState
	Chooser  ChooserHandle
	Teams    []types.TeamID
}

// ResolveContext carries everything a policy may touch when resolving an
// answer or a timer end.
type ResolveContext struct {
	Round    *rounddomain.Round
	Question *rounddomain.Question
	State    *rounddomain.QuestionState
	Teams    []types.TeamID
	// Players maps every registered player to their team, so race policies
	// can award the buzzer head's own team.
	Players map[types.PlayerID]types.TeamID
	Now     time.Time
}

// Resolution is the outcome of resolving one answer. Deltas land on the
// round ledger; the remaining fields steer the orchestrator.
type Resolution struct {
	Deltas []types.ScoreDelta

	// QuestionDone marks the question resolved.
	QuestionDone bool
	WinnerTeam   types.TeamID

	// CancelPlayer removes the buzzer head from the race (wrong answer).
	CancelPlayer types.PlayerID

	// StopTimer pauses the clock while the head answers was already done at
	// press time; ResumeTimer restarts it after a wrong answer.
	StopTimer   bool
	ResumeTimer bool
}

// Award is a small helper building a single-delta resolution.
func Award(team types.TeamID, points types.Score) []types.ScoreDelta {
	if team == "" || points == 0 {
		return nil
	}
	return []types.ScoreDelta{{TeamID: team, Points: points}}
}

// Policy is the rule set of one round type.
type Policy interface {
	RoundType() types.RoundType

	// CalculateMaxPoints returns the type's point ceiling for a full round.
	// Ranking-scored types have no defined ceiling and return 0.
	CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score

	// PrepareQuestionStart mutates the fresh sub-state for this type:
	// picking the chooser, arming the clue index, clearing the race.
	PrepareQuestionStart(pctx *PrepareContext) error

	// ResolveAnswer scores one answer.
	ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error)
}

// TimerEnder is implemented by policies that react to the shared timer's
// natural end (enumeration closes, riddles advance a clue).
type TimerEnder interface {
	OnTimerEnd(rctx *ResolveContext) (Resolution, error)
}

// Finalizer is implemented by ranking-scored policies that pay out when the
// question ends rather than per answer.
type Finalizer interface {
	FinalizeQuestion(rctx *ResolveContext) (Resolution, error)
}
