package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Repository is the round persistence contract. Methods accept a bun.IDB so
// callers can pass the surrounding transaction; nil falls back to the pool.
type Repository interface {
	CreateRound(ctx context.Context, db bun.IDB, round *rounddomain.Round, position int) error
	GetRound(ctx context.Context, db bun.IDB, roundID types.RoundID) (*rounddomain.Round, error)
	GetRoundsByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*rounddomain.Round, error)
	SaveRoundProgress(ctx context.Context, db bun.IDB, round *rounddomain.Round) error

	CreateQuestion(ctx context.Context, db bun.IDB, question *rounddomain.Question, position int) error
	GetQuestion(ctx context.Context, db bun.IDB, questionID types.QuestionID) (*rounddomain.Question, error)
	GetQuestionsByRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]*rounddomain.Question, error)

	UpsertQuestionState(ctx context.Context, db bun.IDB, state *rounddomain.QuestionState) error
	GetQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID, questionID types.QuestionID) (*rounddomain.QuestionState, error)
	GetActiveQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID) (*rounddomain.QuestionState, error)
	DeleteQuestionStates(ctx context.Context, db bun.IDB, gameID types.GameID) error
}

// RoundDBImpl is the bun-backed Repository.
type RoundDBImpl struct {
	DB *bun.DB
}

func (r *RoundDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *RoundDBImpl) CreateRound(ctx context.Context, db bun.IDB, round *rounddomain.Round, position int) error {
	row := &Round{
		ID:                 round.ID,
		GameID:             round.GameID,
		Title:              round.Title,
		Type:               round.Type,
		ScoringMode:        round.ScoringMode,
		RankingRewards:     round.RankingRewards,
		RewardsPerQuestion: round.RewardsPerQuestion,
		RewardsPerElement:  round.RewardsPerElement,
		EnumBonus:          round.EnumBonus,
		ThinkingTime:       round.ThinkingTime,
		MaxTries:           round.MaxTries,
		MistakePenalty:     round.MistakePenalty,
		QuestionIDs:        round.QuestionIDs,
		CurrentQuestionIdx: round.CurrentQuestionIdx,
		Position:           position,
	}
	if _, err := r.idb(db).NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert round %s: %w", round.ID, err)
	}
	return nil
}

func (r *RoundDBImpl) GetRound(ctx context.Context, db bun.IDB, roundID types.RoundID) (*rounddomain.Round, error) {
	var row Round
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("r.id = ?", roundID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "round", ID: roundID.String()}
		}
		return nil, fmt.Errorf("failed to fetch round %s: %w", roundID, err)
	}
	return roundToDomain(&row), nil
}

func (r *RoundDBImpl) GetRoundsByGame(ctx context.Context, db bun.IDB, gameID types.GameID) ([]*rounddomain.Round, error) {
	var rows []Round
	err := r.idb(db).NewSelect().
		Model(&rows).
		Where("r.game_id = ?", gameID).
		Order("r.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rounds for game %s: %w", gameID, err)
	}
	out := make([]*rounddomain.Round, len(rows))
	for i := range rows {
		out[i] = roundToDomain(&rows[i])
	}
	return out, nil
}

// SaveRoundProgress persists the question cursor; authored content never
// changes after game start.
func (r *RoundDBImpl) SaveRoundProgress(ctx context.Context, db bun.IDB, round *rounddomain.Round) error {
	_, err := r.idb(db).NewUpdate().
		Model((*Round)(nil)).
		Set("current_question_idx = ?", round.CurrentQuestionIdx).
		Set("updated_at = now()").
		Where("id = ?", round.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save progress for round %s: %w", round.ID, err)
	}
	return nil
}

func (r *RoundDBImpl) CreateQuestion(ctx context.Context, db bun.IDB, question *rounddomain.Question, position int) error {
	row := &Question{
		ID:             question.ID,
		RoundID:        question.RoundID,
		Type:           question.Type,
		Prompt:         question.Prompt,
		AnswerText:     question.AnswerText,
		Choices:        question.Choices,
		AnswerIdx:      question.AnswerIdx,
		Labels:         question.Labels,
		QuoteFragments: question.QuoteFragments,
		Elements:       question.Elements,
		CorrectOrder:   question.CorrectOrder,
		Pairs:          question.Pairs,
		Items:          question.Items,
		OddIdx:         question.OddIdx,
		Clues:          question.Clues,
		ImageURL:       question.ImageURL,
		EnumAnswers:    question.EnumAnswers,
		EnumTarget:     question.EnumTarget,
		Position:       position,
	}
	if _, err := r.idb(db).NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert question %s: %w", question.ID, err)
	}
	return nil
}

func (r *RoundDBImpl) GetQuestion(ctx context.Context, db bun.IDB, questionID types.QuestionID) (*rounddomain.Question, error) {
	var row Question
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("q.id = ?", questionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "question", ID: questionID.String()}
		}
		return nil, fmt.Errorf("failed to fetch question %s: %w", questionID, err)
	}
	return questionToDomain(&row), nil
}

func (r *RoundDBImpl) GetQuestionsByRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]*rounddomain.Question, error) {
	var rows []Question
	err := r.idb(db).NewSelect().
		Model(&rows).
		Where("q.round_id = ?", roundID).
		Order("q.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions for round %s: %w", roundID, err)
	}
	out := make([]*rounddomain.Question, len(rows))
	for i := range rows {
		out[i] = questionToDomain(&rows[i])
	}
	return out, nil
}

// UpsertQuestionState writes the realtime sub-state, keyed by
// (game, question). The denormalized status column lets the active lookup
// skip the jsonb payload.
func (r *RoundDBImpl) UpsertQuestionState(ctx context.Context, db bun.IDB, state *rounddomain.QuestionState) error {
	row := &QuestionState{
		GameID:     state.GameID,
		RoundID:    state.RoundID,
		QuestionID: state.QuestionID,
		Data:       state,
		Status:     state.Status,
	}
	_, err := r.idb(db).NewInsert().
		Model(row).
		On("CONFLICT (game_id, question_id) DO UPDATE").
		Set("data = EXCLUDED.data, status = EXCLUDED.status, updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save question state for game %s question %s: %w", state.GameID, state.QuestionID, err)
	}
	return nil
}

func (r *RoundDBImpl) GetQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID, questionID types.QuestionID) (*rounddomain.QuestionState, error) {
	var row QuestionState
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("qs.game_id = ?", gameID).
		Where("qs.question_id = ?", questionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "question state", ID: questionID.String()}
		}
		return nil, fmt.Errorf("failed to fetch question state for game %s: %w", gameID, err)
	}
	return row.Data, nil
}

// GetActiveQuestionState returns the state of the game's active question.
func (r *RoundDBImpl) GetActiveQuestionState(ctx context.Context, db bun.IDB, gameID types.GameID) (*rounddomain.QuestionState, error) {
	var row QuestionState
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("qs.game_id = ?", gameID).
		Where("qs.status = ?", types.QuestionStatusActive).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "active question state", ID: gameID.String()}
		}
		return nil, fmt.Errorf("failed to fetch active question state for game %s: %w", gameID, err)
	}
	return row.Data, nil
}

// DeleteQuestionStates wipes every sub-state of the game, used when a game is
// reopened for editing.
func (r *RoundDBImpl) DeleteQuestionStates(ctx context.Context, db bun.IDB, gameID types.GameID) error {
	_, err := r.idb(db).NewDelete().
		Model((*QuestionState)(nil)).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete question states for game %s: %w", gameID, err)
	}
	return nil
}
