package buzzerservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
)

func newTestService(repo *FakeRoundRepository, gameRepo *FakeGameRepository, clock randutil.Clock) *BuzzerService {
	return NewBuzzerService(
		repo,
		gameRepo,
		nil,
		observability.NoOpLogger,
		observability.NoOpMetrics(),
		observability.NoOpTracer(),
		nil,
		storage.DefaultTxOptions(),
		clock,
	)
}

func seedActiveQuestion(repo *FakeRoundRepository) (types.GameID, types.RoundID, types.QuestionID) {
	gameID := types.NewGameID()
	roundID := types.NewRoundID()
	questionID := types.NewQuestionID()

	state := rounddomain.NewQuestionState(gameID, roundID, questionID)
	state.Status = types.QuestionStatusActive
	repo.States[stateKey(gameID, questionID)] = state
	return gameID, roundID, questionID
}

func press(payload events.BuzzerPressRequestedPayloadV1, player types.PlayerID) events.BuzzerPressRequestedPayloadV1 {
	payload.PlayerID = player
	return payload
}

func TestPressBuzzer_QueueIsArrivalOrder(t *testing.T) {
	repo := NewFakeRoundRepository()
	clock := &randutil.FakeClock{Current: time.Now()}
	svc := newTestService(repo, NewFakeGameRepository(), clock)
	gameID, roundID, questionID := seedActiveQuestion(repo)

	base := events.BuzzerPressRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID}
	for _, player := range []types.PlayerID{"p2", "p1", "p3"} {
		clock.Advance(time.Millisecond)
		result, err := svc.PressBuzzer(context.Background(), press(base, player))
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
	}

	result, err := svc.PressBuzzer(context.Background(), press(base, "p2"))
	require.NoError(t, err)
	require.True(t, result.IsSuccess(), "re-press commits as a no-op")
	assert.Equal(t, []types.PlayerID{"p2", "p1", "p3"}, result.Success.Queue)
	assert.Equal(t, types.PlayerID("p2"), result.Success.Head)
}

func TestPressBuzzer_InactiveQuestionFails(t *testing.T) {
	repo := NewFakeRoundRepository()
	svc := newTestService(repo, NewFakeGameRepository(), &randutil.FakeClock{Current: time.Now()})
	gameID, roundID, questionID := seedActiveQuestion(repo)
	repo.States[stateKey(gameID, questionID)].Status = types.QuestionStatusResolved

	result, err := svc.PressBuzzer(context.Background(), events.BuzzerPressRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p1",
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Equal(t, "PressBuzzer", result.Failure.Command)
}

func TestCancelPlayer_BarsReentry(t *testing.T) {
	repo := NewFakeRoundRepository()
	clock := &randutil.FakeClock{Current: time.Now()}
	svc := newTestService(repo, NewFakeGameRepository(), clock)
	gameID, roundID, questionID := seedActiveQuestion(repo)

	base := events.BuzzerPressRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID}
	for _, player := range []types.PlayerID{"p2", "p1", "p3"} {
		_, err := svc.PressBuzzer(context.Background(), press(base, player))
		require.NoError(t, err)
	}

	result, err := svc.CancelPlayer(context.Background(), events.PlayerCancelRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p2",
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, []types.PlayerID{"p1", "p3"}, result.Success.Queue)
	require.Len(t, result.Success.Canceled, 1)
	assert.Equal(t, types.PlayerID("p2"), result.Success.Canceled[0].PlayerID)

	pressed, err := svc.PressBuzzer(context.Background(), press(base, "p2"))
	require.NoError(t, err)
	require.True(t, pressed.IsSuccess())
	assert.Equal(t, []types.PlayerID{"p1", "p3"}, pressed.Success.Queue, "canceled players stay out")
}

func TestReleaseBuzzer_RemovesWithoutPenalty(t *testing.T) {
	repo := NewFakeRoundRepository()
	clock := &randutil.FakeClock{Current: time.Now()}
	svc := newTestService(repo, NewFakeGameRepository(), clock)
	gameID, roundID, questionID := seedActiveQuestion(repo)

	base := events.BuzzerPressRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID}
	for _, player := range []types.PlayerID{"p1", "p2"} {
		_, err := svc.PressBuzzer(context.Background(), press(base, player))
		require.NoError(t, err)
	}

	result, err := svc.ReleaseBuzzer(context.Background(), events.BuzzerReleaseRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p1",
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, []types.PlayerID{"p2"}, result.Success.Queue)

	// A released player may press again.
	pressed, err := svc.PressBuzzer(context.Background(), press(base, "p1"))
	require.NoError(t, err)
	assert.Equal(t, []types.PlayerID{"p2", "p1"}, pressed.Success.Queue)
}

func TestClearBuzzer_PreserveCanceled(t *testing.T) {
	repo := NewFakeRoundRepository()
	clock := &randutil.FakeClock{Current: time.Now()}
	svc := newTestService(repo, NewFakeGameRepository(), clock)
	gameID, roundID, questionID := seedActiveQuestion(repo)

	base := events.BuzzerPressRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID}
	_, err := svc.PressBuzzer(context.Background(), press(base, "p1"))
	require.NoError(t, err)
	_, err = svc.CancelPlayer(context.Background(), events.PlayerCancelRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p2",
	})
	require.NoError(t, err)

	result, err := svc.ClearBuzzer(context.Background(), events.BuzzerClearRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PreserveCanceled: true,
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	state, err := repo.GetQuestionState(context.Background(), nil, gameID, questionID)
	require.NoError(t, err)
	assert.Empty(t, state.Buzzed)
	assert.True(t, state.IsCanceled("p2"), "preserve keeps the cancel list")

	_, err = svc.ClearBuzzer(context.Background(), events.BuzzerClearRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
	})
	require.NoError(t, err)

	state, err = repo.GetQuestionState(context.Background(), nil, gameID, questionID)
	require.NoError(t, err)
	assert.Empty(t, state.Canceled, "full clear resets the cancel list")
}

func TestBuzzer_HeadCarriesReadyStatus(t *testing.T) {
	repo := NewFakeRoundRepository()
	gameRepo := NewFakeGameRepository()
	clock := &randutil.FakeClock{Current: time.Now()}
	svc := newTestService(repo, gameRepo, clock)
	gameID, roundID, questionID := seedActiveQuestion(repo)

	base := events.BuzzerPressRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID}
	for _, player := range []types.PlayerID{"p1", "p2", "p3"} {
		clock.Advance(time.Millisecond)
		_, err := svc.PressBuzzer(context.Background(), press(base, player))
		require.NoError(t, err)
	}
	assert.Equal(t, types.PlayerStatusReady, gameRepo.Statuses["p1"], "first press takes the answering slot")
	_, tracked := gameRepo.Statuses["p2"]
	assert.False(t, tracked, "queued players keep their status")

	// Cancel hands the slot to the next player in line.
	_, err := svc.CancelPlayer(context.Background(), events.PlayerCancelRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PlayerStatusIdle, gameRepo.Statuses["p1"])
	assert.Equal(t, types.PlayerStatusReady, gameRepo.Statuses["p2"])

	// Release by the head promotes as well.
	_, err = svc.ReleaseBuzzer(context.Background(), events.BuzzerReleaseRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, PlayerID: "p2",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PlayerStatusIdle, gameRepo.Statuses["p2"])
	assert.Equal(t, types.PlayerStatusReady, gameRepo.Statuses["p3"])

	// Clearing the queue leaves nobody entitled to answer.
	_, err = svc.ClearBuzzer(context.Background(), events.BuzzerClearRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
	})
	require.NoError(t, err)
	for player, status := range gameRepo.Statuses {
		assert.Equal(t, types.PlayerStatusIdle, status, "player %s after clear", player)
	}
}
