package rounddomain

import (
	"slices"
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// QuestionState is the realtime sub-state of one question in one game. It is
// (re)created on question start or reset and owned by the active question.
type QuestionState struct {
	GameID     types.GameID
	RoundID    types.RoundID
	QuestionID types.QuestionID

	Status types.QuestionStatus

	// Buzzed is the FIFO race queue; index 0 is entitled to answer.
	Buzzed []types.BuzzEntry
	// Canceled players are barred from re-entering Buzzed for the rest of
	// the question.
	Canceled []types.CancelEntry

	// ChooserTeam is the acting team for turn-based types.
	ChooserTeam types.TeamID
	WinnerTeam  types.TeamID

	// Revealed element indices (labelling, quote).
	Revealed []int
	// ClueIdx is the currently visible clue for the riddle types.
	ClueIdx int
	// Tries counts attempts per team.
	Tries map[types.TeamID]int
	// Tallies accumulates per-team counters for ranking types (correct
	// matching edges, odd-one-out survival picks).
	Tallies map[types.TeamID]int
	// Eliminated teams are out of the current draw (odd-one-out).
	Eliminated []types.TeamID
	// Citations already validated (enumeration), kept to refuse duplicates.
	Citations []string
}

// NewQuestionState builds the fresh realtime sub-state for a question.
// Calling it again yields an identical state: reset is idempotent.
func NewQuestionState(gameID types.GameID, roundID types.RoundID, questionID types.QuestionID) *QuestionState {
	return &QuestionState{
		GameID:     gameID,
		RoundID:    roundID,
		QuestionID: questionID,
		Status:     types.QuestionStatusIdle,
		Buzzed:     []types.BuzzEntry{},
		Canceled:   []types.CancelEntry{},
		Revealed:   []int{},
		ClueIdx:    0,
		Tries:      map[types.TeamID]int{},
		Tallies:    map[types.TeamID]int{},
		Eliminated: []types.TeamID{},
		Citations:  []string{},
	}
}

// Head returns the player currently entitled to answer, or "".
func (s *QuestionState) Head() types.PlayerID {
	if len(s.Buzzed) == 0 {
		return ""
	}
	return s.Buzzed[0].PlayerID
}

// Queue returns the buzzed player ids in arrival order.
func (s *QuestionState) Queue() []types.PlayerID {
	out := make([]types.PlayerID, len(s.Buzzed))
	for i, e := range s.Buzzed {
		out[i] = e.PlayerID
	}
	return out
}

// InQueue reports whether the player holds a committed press.
func (s *QuestionState) InQueue(id types.PlayerID) bool {
	return slices.ContainsFunc(s.Buzzed, func(e types.BuzzEntry) bool { return e.PlayerID == id })
}

// IsCanceled reports whether the player was removed from the race.
func (s *QuestionState) IsCanceled(id types.PlayerID) bool {
	return slices.ContainsFunc(s.Canceled, func(e types.CancelEntry) bool { return e.PlayerID == id })
}

// Press appends the player to the queue. Presses by players already queued
// or canceled commit as no-ops; the returned bool reports whether the queue
// changed.
func (s *QuestionState) Press(id types.PlayerID, at time.Time) bool {
	if s.InQueue(id) || s.IsCanceled(id) {
		return false
	}
	s.Buzzed = append(s.Buzzed, types.BuzzEntry{PlayerID: id, PressedAt: at})
	return true
}

// Release removes the player from the queue without penalty.
func (s *QuestionState) Release(id types.PlayerID) bool {
	before := len(s.Buzzed)
	s.Buzzed = slices.DeleteFunc(s.Buzzed, func(e types.BuzzEntry) bool { return e.PlayerID == id })
	return len(s.Buzzed) != before
}

// Cancel removes the player from the queue and bars re-entry for the rest of
// the question. clueIdx records the clue visible at cancel time; pass -1 for
// types without clues.
func (s *QuestionState) Cancel(id types.PlayerID, at time.Time, clueIdx int) bool {
	if s.IsCanceled(id) {
		return false
	}
	s.Release(id)
	s.Canceled = append(s.Canceled, types.CancelEntry{PlayerID: id, CanceledAt: at, ClueIdx: clueIdx})
	return true
}

// Clear empties the queue. When preserveCanceled is false the cancel list is
// wiped too, giving every player a fresh attempt.
func (s *QuestionState) Clear(preserveCanceled bool) {
	s.Buzzed = []types.BuzzEntry{}
	if !preserveCanceled {
		s.Canceled = []types.CancelEntry{}
	}
}

// IsRevealed reports whether element idx was already revealed.
func (s *QuestionState) IsRevealed(idx int) bool {
	return slices.Contains(s.Revealed, idx)
}

// Reveal marks element idx revealed; duplicates are ignored.
func (s *QuestionState) Reveal(idx int) bool {
	if s.IsRevealed(idx) {
		return false
	}
	s.Revealed = append(s.Revealed, idx)
	return true
}

// IsEliminated reports whether the team is out of the current draw.
func (s *QuestionState) IsEliminated(id types.TeamID) bool {
	return slices.Contains(s.Eliminated, id)
}

// Eliminate marks the team out of the current draw.
func (s *QuestionState) Eliminate(id types.TeamID) {
	if !s.IsEliminated(id) {
		s.Eliminated = append(s.Eliminated, id)
	}
}

// HasCitation reports whether the citation was already validated, compared
// case-insensitively by the caller's normalization.
func (s *QuestionState) HasCitation(c string) bool {
	return slices.Contains(s.Citations, c)
}
