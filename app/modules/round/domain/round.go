// Package rounddomain holds the round and question model: immutable authored
// content plus the mutable realtime sub-state scoped to one
// game+round+question triple.
package rounddomain

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Round is one authored round of a game.
type Round struct {
	ID     types.RoundID
	GameID types.GameID
	Title  string
	Type   types.RoundType

	ScoringMode types.ScoringMode
	// RankingRewards pays out by final rank when ScoringMode is ranking.
	RankingRewards []types.Score
	// RewardsPerQuestion is the per-question payout for question-unit types.
	RewardsPerQuestion types.Score
	// RewardsPerElement is the per-unit payout for element-unit types
	// (labels, quote fragments, ordering elements, citations).
	RewardsPerElement types.Score
	// EnumBonus is added when an enumeration target is reached.
	EnumBonus types.Score

	// ThinkingTime is the armed timer duration, in seconds.
	ThinkingTime int
	MaxTries     int
	// MistakePenalty is subtracted on a wrong try when positive.
	MistakePenalty types.Score

	QuestionIDs []types.QuestionID
	// CurrentQuestionIdx indexes QuestionIDs, or -1 before the round starts.
	CurrentQuestionIdx int
}

// QuestionCount returns the number of authored questions.
func (r *Round) QuestionCount() int { return len(r.QuestionIDs) }

// ValidQuestionIdx reports whether idx addresses a question or is the
// pre-start sentinel.
func (r *Round) ValidQuestionIdx(idx int) bool {
	return idx == -1 || (idx >= 0 && idx < len(r.QuestionIDs))
}

// Exhausted reports whether the round has no questions left after idx.
func (r *Round) Exhausted() bool {
	return r.CurrentQuestionIdx >= len(r.QuestionIDs)-1
}

// MatchPair is one authored edge of a matching grid.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is the immutable authored content of one question. Only the
// fields relevant to its type are populated.
type Question struct {
	ID      types.QuestionID
	RoundID types.RoundID
	Type    types.RoundType
	Prompt  string

	// AnswerText is the expected answer for organizer-validated types.
	AnswerText string
	// Choices + AnswerIdx drive mcq/nagui system checks.
	Choices   []string
	AnswerIdx int

	// Labels to reveal one by one (labelling).
	Labels []string
	// QuoteFragments to reveal one by one (quote) or as clues (quote riddle).
	QuoteFragments []string
	// Elements + CorrectOrder drive reordering.
	Elements     []string
	CorrectOrder []int
	// Pairs drive the matching grid.
	Pairs []MatchPair
	// Items + OddIdx drive odd-one-out.
	Items  []string
	OddIdx int
	// Clues revealed progressively in the riddle types.
	Clues    []string
	ImageURL string
	// EnumAnswers is the citation answer key; EnumTarget the count to beat.
	EnumAnswers []string
	EnumTarget  int
}

// UnitCount returns the number of scoreable units the question carries for
// completion-rate scoring. Question-unit types count as one.
func (q *Question) UnitCount() int {
	switch q.Type {
	case types.RoundTypeLabelling:
		return len(q.Labels)
	case types.RoundTypeQuote:
		return len(q.QuoteFragments)
	case types.RoundTypeReordering:
		return len(q.Elements)
	case types.RoundTypeEnumeration:
		return q.EnumTarget
	default:
		return 1
	}
}
