// Package parsers turns uploaded question-set files into authored rounds and
// questions. A set is tabular: one row per question, consecutive rows with
// the same round title grouping into one round.
package parsers

import (
	"fmt"
	"strconv"
	"strings"

	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// ParsedQuestion is one authored question before ids are assigned.
type ParsedQuestion struct {
	Prompt  string
	Answer  string
	Options []string
}

// ParsedRound is one authored round before ids are assigned.
type ParsedRound struct {
	Title        string
	Type         types.RoundType
	Rewards      []types.Score
	ThinkingTime int
	Questions    []ParsedQuestion
}

// QuestionSet is the parsed content of one uploaded file.
type QuestionSet struct {
	Rounds []ParsedRound
}

// QuestionCount returns the total number of questions across rounds.
func (s *QuestionSet) QuestionCount() int {
	n := 0
	for _, r := range s.Rounds {
		n += len(r.Questions)
	}
	return n
}

// Parser defines the interface for question-set parsers.
type Parser interface {
	Parse(data []byte) (*QuestionSet, error)
}

// ParserFactory defines the interface for creating parsers.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// getFileExtension extracts the file extension from a filename.
func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}

// Column layout of a question-set table. The header row is required and
// matched case-insensitively.
var expectedHeader = []string{"round", "type", "prompt", "answer", "options", "rewards", "thinking_time"}

const (
	colRound = iota
	colType
	colPrompt
	colAnswer
	colOptions
	colRewards
	colThinkingTime
)

// buildSet assembles a QuestionSet from raw table rows. Both file formats
// reduce to this once their container is read.
func buildSet(rows [][]string) (*QuestionSet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("question set is empty")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	set := &QuestionSet{}
	var current *ParsedRound

	for i, row := range rows[1:] {
		line := i + 2
		if isBlankRow(row) {
			continue
		}
		row = padRow(row, len(expectedHeader))

		title := strings.TrimSpace(row[colRound])
		if title == "" {
			return nil, fmt.Errorf("line %d: round title is required", line)
		}

		roundType := types.RoundType(strings.ToLower(strings.TrimSpace(row[colType])))
		if !roundType.Valid() {
			return nil, fmt.Errorf("line %d: unknown round type %q", line, row[colType])
		}

		prompt := strings.TrimSpace(row[colPrompt])
		if prompt == "" {
			return nil, fmt.Errorf("line %d: prompt is required", line)
		}

		if current == nil || current.Title != title {
			rewards, err := parseRewards(row[colRewards])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			thinking, err := parseOptionalInt(row[colThinkingTime])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid thinking time: %w", line, err)
			}
			set.Rounds = append(set.Rounds, ParsedRound{
				Title:        title,
				Type:         roundType,
				Rewards:      rewards,
				ThinkingTime: thinking,
			})
			current = &set.Rounds[len(set.Rounds)-1]
		} else if current.Type != roundType {
			return nil, fmt.Errorf("line %d: round %q mixes types %s and %s", line, title, current.Type, roundType)
		}

		question := ParsedQuestion{
			Prompt:  prompt,
			Answer:  strings.TrimSpace(row[colAnswer]),
			Options: splitOptions(row[colOptions]),
		}
		if err := validateQuestion(roundType, question); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		current.Questions = append(current.Questions, question)
	}

	if len(set.Rounds) == 0 {
		return nil, fmt.Errorf("question set has no question rows")
	}
	return set, nil
}

func checkHeader(row []string) error {
	if len(row) < len(expectedHeader) {
		return fmt.Errorf("header row needs %d columns, got %d", len(expectedHeader), len(row))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return fmt.Errorf("header column %d must be %q, got %q", i+1, want, row[i])
		}
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

// splitOptions splits the pipe-separated options cell. What the entries mean
// depends on the round type: choices, labels, fragments, clues, items,
// ordered elements, citation answers or left=right pairs.
func splitOptions(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseRewards reads the pipe-separated rewards cell. One value is a per-unit
// reward; several values form a ranking payout table.
func parseRewards(cell string) ([]types.Score, error) {
	parts := splitOptions(cell)
	if len(parts) == 0 {
		return nil, fmt.Errorf("rewards column is required")
	}
	out := make([]types.Score, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("non-numeric reward %q", part)
		}
		if v < 0 {
			return nil, fmt.Errorf("negative reward %d", v)
		}
		out[i] = types.Score(v)
	}
	return out, nil
}

func parseOptionalInt(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}

// validateQuestion checks the per-type content requirements.
func validateQuestion(t types.RoundType, q ParsedQuestion) error {
	switch t {
	case types.RoundTypeMCQ, types.RoundTypeNagui:
		if len(q.Options) < 2 {
			return fmt.Errorf("%s question needs at least two options", t)
		}
		if findOption(q.Options, q.Answer) < 0 {
			return fmt.Errorf("%s answer %q is not among the options", t, q.Answer)
		}
	case types.RoundTypeLabelling, types.RoundTypeQuote, types.RoundTypeReordering,
		types.RoundTypeEnumeration, types.RoundTypeImageRiddle, types.RoundTypeQuoteRiddle:
		if len(q.Options) == 0 {
			return fmt.Errorf("%s question needs its options column filled", t)
		}
	case types.RoundTypeMatching:
		if len(q.Options) < 2 {
			return fmt.Errorf("matching question needs at least two pairs")
		}
		for _, pair := range q.Options {
			if !strings.Contains(pair, "=") {
				return fmt.Errorf("matching pair %q must be left=right", pair)
			}
		}
	case types.RoundTypeOddOneOut:
		if len(q.Options) < 2 {
			return fmt.Errorf("odd-one-out question needs at least two items")
		}
		if findOption(q.Options, q.Answer) < 0 {
			return fmt.Errorf("odd-one-out answer %q is not among the items", q.Answer)
		}
	}
	return nil
}

func findOption(options []string, answer string) int {
	for i, option := range options {
		if strings.EqualFold(option, strings.TrimSpace(answer)) {
			return i
		}
	}
	return -1
}

// ToDomain converts one parsed round into its authored domain records,
// assigning fresh ids. The element-unit types store rewards per element,
// ranking tables go to RankingRewards, everything else pays per question.
func (r *ParsedRound) ToDomain(gameID types.GameID) (*rounddomain.Round, []*rounddomain.Question) {
	round := &rounddomain.Round{
		ID:                 types.NewRoundID(),
		GameID:             gameID,
		Title:              r.Title,
		Type:               r.Type,
		ThinkingTime:       r.ThinkingTime,
		CurrentQuestionIdx: -1,
	}

	switch {
	case len(r.Rewards) > 1:
		round.ScoringMode = types.ScoringModeRanking
		round.RankingRewards = r.Rewards
	case isElementUnit(r.Type):
		round.ScoringMode = types.ScoringModeCompletionRate
		round.RewardsPerElement = r.Rewards[0]
	default:
		round.ScoringMode = types.ScoringModeCompletionRate
		round.RewardsPerQuestion = r.Rewards[0]
	}

	questions := make([]*rounddomain.Question, len(r.Questions))
	for i, pq := range r.Questions {
		q := &rounddomain.Question{
			ID:      types.NewQuestionID(),
			RoundID: round.ID,
			Type:    r.Type,
			Prompt:  pq.Prompt,
		}
		fillQuestion(q, r.Type, pq)
		questions[i] = q
		round.QuestionIDs = append(round.QuestionIDs, q.ID)
	}
	return round, questions
}

func isElementUnit(t types.RoundType) bool {
	switch t {
	case types.RoundTypeLabelling, types.RoundTypeQuote, types.RoundTypeReordering, types.RoundTypeEnumeration:
		return true
	}
	return false
}

func fillQuestion(q *rounddomain.Question, t types.RoundType, pq ParsedQuestion) {
	switch t {
	case types.RoundTypeMCQ, types.RoundTypeNagui:
		q.Choices = pq.Options
		q.AnswerIdx = findOption(pq.Options, pq.Answer)
	case types.RoundTypeLabelling:
		q.Labels = pq.Options
		q.AnswerText = pq.Answer
	case types.RoundTypeQuote:
		q.QuoteFragments = pq.Options
		q.AnswerText = pq.Answer
	case types.RoundTypeQuoteRiddle:
		q.Clues = pq.Options
		q.AnswerText = pq.Answer
	case types.RoundTypeImageRiddle:
		q.Clues = pq.Options
		q.AnswerText = pq.Answer
		if len(pq.Options) > 0 {
			q.ImageURL = pq.Options[0]
		}
	case types.RoundTypeReordering:
		// Options arrive in correct order; the engine shuffles on display.
		q.Elements = pq.Options
		q.CorrectOrder = identityOrder(len(pq.Options))
	case types.RoundTypeMatching:
		for _, pair := range pq.Options {
			left, right, _ := strings.Cut(pair, "=")
			q.Pairs = append(q.Pairs, rounddomain.MatchPair{
				Left:  strings.TrimSpace(left),
				Right: strings.TrimSpace(right),
			})
		}
	case types.RoundTypeOddOneOut:
		q.Items = pq.Options
		q.OddIdx = findOption(pq.Options, pq.Answer)
	case types.RoundTypeEnumeration:
		q.EnumAnswers = pq.Options
		q.EnumTarget = len(pq.Options)
	default:
		q.AnswerText = pq.Answer
	}
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
