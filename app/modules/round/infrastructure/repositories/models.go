package rounddb

import (
	"time"

	"github.com/uptrace/bun"

	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Round is the persisted authored round.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID                 types.RoundID      `bun:"id,pk,type:uuid"`
	GameID             types.GameID       `bun:"game_id,notnull,type:uuid"`
	Title              string             `bun:"title,notnull"`
	Type               types.RoundType    `bun:"type,notnull"`
	ScoringMode        types.ScoringMode  `bun:"scoring_mode,notnull"`
	RankingRewards     []types.Score      `bun:"ranking_rewards,type:jsonb"`
	RewardsPerQuestion types.Score        `bun:"rewards_per_question,notnull,default:0"`
	RewardsPerElement  types.Score        `bun:"rewards_per_element,notnull,default:0"`
	EnumBonus          types.Score        `bun:"enum_bonus,notnull,default:0"`
	ThinkingTime       int                `bun:"thinking_time,notnull,default:0"`
	MaxTries           int                `bun:"max_tries,notnull,default:1"`
	MistakePenalty     types.Score        `bun:"mistake_penalty,notnull,default:0"`
	QuestionIDs        []types.QuestionID `bun:"question_ids,type:jsonb"`
	CurrentQuestionIdx int                `bun:"current_question_idx,notnull,default:-1"`
	Position           int                `bun:"position,notnull,default:0"`
	CreatedAt          time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Question is the persisted authored question. Type-specific content lives
// in jsonb columns.
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID             types.QuestionID        `bun:"id,pk,type:uuid"`
	RoundID        types.RoundID           `bun:"round_id,notnull,type:uuid"`
	Type           types.RoundType         `bun:"type,notnull"`
	Prompt         string                  `bun:"prompt,notnull"`
	AnswerText     string                  `bun:"answer_text"`
	Choices        []string                `bun:"choices,type:jsonb"`
	AnswerIdx      int                     `bun:"answer_idx,notnull,default:0"`
	Labels         []string                `bun:"labels,type:jsonb"`
	QuoteFragments []string                `bun:"quote_fragments,type:jsonb"`
	Elements       []string                `bun:"elements,type:jsonb"`
	CorrectOrder   []int                   `bun:"correct_order,type:jsonb"`
	Pairs          []rounddomain.MatchPair `bun:"pairs,type:jsonb"`
	Items          []string                `bun:"items,type:jsonb"`
	OddIdx         int                     `bun:"odd_idx,notnull,default:0"`
	Clues          []string                `bun:"clues,type:jsonb"`
	ImageURL       string                  `bun:"image_url"`
	EnumAnswers    []string                `bun:"enum_answers,type:jsonb"`
	EnumTarget     int                     `bun:"enum_target,notnull,default:0"`
	Position       int                     `bun:"position,notnull,default:0"`
	CreatedAt      time.Time               `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// QuestionState is the persisted realtime sub-state. One row per
// (game, question); the game's active question is the row whose status is
// active.
type QuestionState struct {
	bun.BaseModel `bun:"table:question_states,alias:qs"`

	ID         int64                     `bun:"id,pk,autoincrement"`
	GameID     types.GameID              `bun:"game_id,notnull,type:uuid"`
	RoundID    types.RoundID             `bun:"round_id,notnull,type:uuid"`
	QuestionID types.QuestionID          `bun:"question_id,notnull,type:uuid"`
	Data       *rounddomain.QuestionState `bun:"data,type:jsonb,notnull"`
	Status     types.QuestionStatus      `bun:"status,notnull"`
	UpdatedAt  time.Time                 `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func roundToDomain(row *Round) *rounddomain.Round {
	return &rounddomain.Round{
		ID:                 row.ID,
		GameID:             row.GameID,
		Title:              row.Title,
		Type:               row.Type,
		ScoringMode:        row.ScoringMode,
		RankingRewards:     row.RankingRewards,
		RewardsPerQuestion: row.RewardsPerQuestion,
		RewardsPerElement:  row.RewardsPerElement,
		EnumBonus:          row.EnumBonus,
		ThinkingTime:       row.ThinkingTime,
		MaxTries:           row.MaxTries,
		MistakePenalty:     row.MistakePenalty,
		QuestionIDs:        row.QuestionIDs,
		CurrentQuestionIdx: row.CurrentQuestionIdx,
	}
}

func questionToDomain(row *Question) *rounddomain.Question {
	return &rounddomain.Question{
		ID:             row.ID,
		RoundID:        row.RoundID,
		Type:           row.Type,
		Prompt:         row.Prompt,
		AnswerText:     row.AnswerText,
		Choices:        row.Choices,
		AnswerIdx:      row.AnswerIdx,
		Labels:         row.Labels,
		QuoteFragments: row.QuoteFragments,
		Elements:       row.Elements,
		CorrectOrder:   row.CorrectOrder,
		Pairs:          row.Pairs,
		Items:          row.Items,
		OddIdx:         row.OddIdx,
		Clues:          row.Clues,
		ImageURL:       row.ImageURL,
		EnumAnswers:    row.EnumAnswers,
		EnumTarget:     row.EnumTarget,
	}
}
