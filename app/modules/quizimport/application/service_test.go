package quizimportservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	gamedomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/parsers"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

const importCSV = `round,type,prompt,answer,options,rewards,thinking_time
Warmup,basic,Capital of France?,Paris,,2,20
Warmup,basic,Largest planet?,Jupiter,,2,20
Showdown,buzzer,Fastest land animal?,Cheetah,,5,10
`

type importFixture struct {
	svc       *ImportService
	gameRepo  *FakeGameRepository
	roundRepo *FakeRoundRepository
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	gameRepo := NewFakeGameRepository()
	roundRepo := NewFakeRoundRepository()
	svc := NewImportService(
		gameRepo, roundRepo, parsers.NewFactory(), nil,
		observability.NoOpLogger, observability.NoOpMetrics(), observability.NoOpTracer(),
		nil, storage.DefaultTxOptions(),
	)
	return &importFixture{svc: svc, gameRepo: gameRepo, roundRepo: roundRepo}
}

func (f *importFixture) seedGame(t *testing.T, status types.GameStatus) types.GameID {
	t.Helper()
	game := &gamedomain.Game{
		ID:     types.NewGameID(),
		Status: status,
	}
	require.NoError(t, f.gameRepo.CreateGame(context.Background(), nil, game))
	return game.ID
}

func TestImportQuestionSet_AppendsRoundsToGame(t *testing.T) {
	f := newImportFixture(t)
	gameID := f.seedGame(t, types.GameStatusEdit)

	result, err := f.svc.ImportQuestionSet(context.Background(), events.QuizImportRequestedPayloadV1{
		GameID:   gameID,
		Filename: "quiz.csv",
		Data:     []byte(importCSV),
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, 2, result.Success.RoundCount)
	assert.Equal(t, 3, result.Success.QuestionCount)

	game := f.gameRepo.Games[gameID]
	require.Len(t, game.RoundIDs, 1)
	require.NotNil(t, game.SpecialRoundID)

	warmup, err := f.roundRepo.GetRound(context.Background(), nil, game.RoundIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Warmup", warmup.Title)
	assert.Equal(t, types.Score(2), warmup.RewardsPerQuestion)
	require.Len(t, warmup.QuestionIDs, 2)

	questions, err := f.roundRepo.GetQuestionsByRound(context.Background(), nil, warmup.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Paris", questions[0].AnswerText)

	special, err := f.roundRepo.GetRound(context.Background(), nil, *game.SpecialRoundID)
	require.NoError(t, err)
	assert.Equal(t, types.RoundTypeBuzzer, special.Type)
}

func TestImportQuestionSet_RefusesSecondSpecialRound(t *testing.T) {
	f := newImportFixture(t)
	gameID := f.seedGame(t, types.GameStatusEdit)
	existing := types.NewRoundID()
	f.gameRepo.Games[gameID].SpecialRoundID = &existing

	result, err := f.svc.ImportQuestionSet(context.Background(), events.QuizImportRequestedPayloadV1{
		GameID:   gameID,
		Filename: "quiz.csv",
		Data:     []byte(importCSV),
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "already has a special round")
}

func TestImportQuestionSet_RefusesStartedGame(t *testing.T) {
	f := newImportFixture(t)
	gameID := f.seedGame(t, types.GameStatusHome)

	result, err := f.svc.ImportQuestionSet(context.Background(), events.QuizImportRequestedPayloadV1{
		GameID:   gameID,
		Filename: "quiz.csv",
		Data:     []byte(importCSV),
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "no longer editable")
	assert.Empty(t, f.roundRepo.Rounds)
}

func TestImportQuestionSet_UnsupportedExtensionFails(t *testing.T) {
	f := newImportFixture(t)
	gameID := f.seedGame(t, types.GameStatusEdit)

	result, err := f.svc.ImportQuestionSet(context.Background(), events.QuizImportRequestedPayloadV1{
		GameID:   gameID,
		Filename: "quiz.pdf",
		Data:     []byte(importCSV),
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "unsupported file type")
}

func TestImportQuestionSet_ParseErrorFails(t *testing.T) {
	f := newImportFixture(t)
	gameID := f.seedGame(t, types.GameStatusEdit)

	result, err := f.svc.ImportQuestionSet(context.Background(), events.QuizImportRequestedPayloadV1{
		GameID:   gameID,
		Filename: "quiz.csv",
		Data:     []byte("not,a,question,set\n"),
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Empty(t, f.roundRepo.Rounds)
}
