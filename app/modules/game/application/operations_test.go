package gameservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/round/policies"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

type testFixture struct {
	svc        *GameService
	gameRepo   *FakeGameRepository
	roundRepo  *FakeRoundRepository
	scoreRepo  *FakeLedgerRepository
	timerRepo  *FakeTimerRepository
	timerSched *FakeTimerScheduler
	startSched *FakeStartScheduler
	clock      *randutil.FakeClock
}

func newTestFixture() *testFixture {
	f := &testFixture{
		gameRepo:   NewFakeGameRepository(),
		roundRepo:  NewFakeRoundRepository(),
		scoreRepo:  NewFakeLedgerRepository(),
		timerRepo:  NewFakeTimerRepository(),
		timerSched: &FakeTimerScheduler{},
		startSched: &FakeStartScheduler{},
		clock:      &randutil.FakeClock{Current: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)},
	}
	cfg := &config.Config{}
	cfg.Game.DefaultThinkingTime = 30
	cfg.Game.MaxTeamNameLength = 40

	f.svc = NewGameService(
		f.gameRepo, f.roundRepo, f.scoreRepo, f.timerRepo,
		policies.NewRegistry(),
		nil,
		observability.NoOpLogger,
		observability.NoOpMetrics(),
		observability.NoOpTracer(),
		nil,
		storage.DefaultTxOptions(),
		f.clock,
		cfg,
	)
	f.svc.SetTimerScheduler(f.timerSched)
	f.svc.SetStartScheduler(f.startSched)
	return f
}

// createGame registers a session through the service and returns its id.
func createGame(t *testing.T, f *testFixture, teams []events.TeamSetupV1, roundIDs []types.RoundID, specialRoundID *types.RoundID, seed int64) types.GameID {
	t.Helper()
	created, err := f.svc.CreateGame(context.Background(), events.GameCreateRequestedPayloadV1{
		Teams:          teams,
		RoundIDs:       roundIDs,
		SpecialRoundID: specialRoundID,
		Seed:           seed,
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())
	return created.Success.GameID
}

// fireTimerEnd emulates the timer worker landing the watchdog job: the
// stored timer flips to ended under its current sequence, which is what the
// published end event carries.
func fireTimerEnd(t *testing.T, f *testFixture, gameID types.GameID) int64 {
	t.Helper()
	timer := f.timerRepo.Timers[gameID]
	require.NotNil(t, timer)
	seq := timer.EndSeq
	require.True(t, timer.End(seq))
	return seq
}

// seedBasicGame creates an opened two-team game with one single-question
// basic round and returns the ids.
func seedBasicGame(t *testing.T, f *testFixture) (types.GameID, types.RoundID, types.QuestionID) {
	t.Helper()
	ctx := context.Background()

	roundID := types.NewRoundID()
	questionID := types.NewQuestionID()

	gameID := createGame(t, f, []events.TeamSetupV1{
		{ID: "t1", Name: "Alpha", Players: []events.PlayerSetupV1{{ID: "p1", Name: "Ann"}}},
		{ID: "t2", Name: "Beta", Players: []events.PlayerSetupV1{{ID: "p2", Name: "Ben"}}},
	}, []types.RoundID{roundID}, nil, 42)

	f.roundRepo.Rounds[roundID] = &rounddomain.Round{
		ID:                 roundID,
		GameID:             gameID,
		Type:               types.RoundTypeBasic,
		RewardsPerQuestion: 3,
		ThinkingTime:       20,
		QuestionIDs:        []types.QuestionID{questionID},
		CurrentQuestionIdx: -1,
	}
	f.roundRepo.Questions[questionID] = &rounddomain.Question{
		ID:      questionID,
		RoundID: roundID,
		Type:    types.RoundTypeBasic,
		Prompt:  "capital of France",
	}

	result, err := f.svc.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	return gameID, roundID, questionID
}

func boolPtr(b bool) *bool { return &b }

func TestGameLifecycle_BasicRoundFlow(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	started, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	require.True(t, started.IsSuccess())
	assert.Len(t, started.Success.ChooserOrder, 2)
	assert.Equal(t, types.Score(3), started.Success.MaxPoints)
	assert.Equal(t, types.GameStatusRoundStart, f.gameRepo.Games[gameID].Status)

	qStarted, err := f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)
	require.True(t, qStarted.IsSuccess())
	assert.Equal(t, 20, qStarted.Success.ThinkingTime)
	assert.Equal(t, types.GameStatusQuestionActive, f.gameRepo.Games[gameID].Status)

	timer := f.timerRepo.Timers[gameID]
	assert.Equal(t, types.TimerStatusStarted, timer.Status)
	require.Len(t, f.timerSched.Scheduled, 1)
	assert.Equal(t, timer.EndSeq, f.timerSched.Scheduled[0].EndSeq)

	resolved, err := f.svc.ResolveAnswer(ctx, events.AnswerResolveRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
		Answer: events.AnswerEventV1{TeamID: "t1", Correct: boolPtr(true)},
	})
	require.NoError(t, err)
	require.True(t, resolved.IsSuccess())
	assert.Equal(t, types.QuestionStatusResolved, resolved.Success.QuestionStatus)
	assert.Equal(t, types.TeamID("t1"), resolved.Success.WinnerTeam)
	assert.Equal(t, types.GameStatusQuestionEnd, f.gameRepo.Games[gameID].Status)

	roundLedger, err := f.scoreRepo.GetLedger(ctx, nil, gameID, events.LedgerScopeRound)
	require.NoError(t, err)
	assert.Equal(t, types.Score(3), roundLedger.Total("t1"))
	assert.Equal(t, types.Score(0), roundLedger.Total("t2"))

	ended, err := f.svc.EndQuestion(ctx, events.QuestionEndRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
	})
	require.NoError(t, err)
	require.True(t, ended.IsSuccess())
	assert.True(t, ended.Success.RoundExhausted)

	rEnded, err := f.svc.EndRound(ctx, events.RoundEndRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	require.True(t, rEnded.IsSuccess())
	assert.Equal(t, types.Score(3), rEnded.Success.Awards["t1"])

	gameLedger, err := f.scoreRepo.GetLedger(ctx, nil, gameID, events.LedgerScopeGame)
	require.NoError(t, err)
	assert.Equal(t, types.Score(3), gameLedger.Total("t1"))

	gEnded, err := f.svc.EndGame(ctx, events.GameEndRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, gEnded.IsSuccess())
	assert.Equal(t, types.Score(3), gEnded.Success.Totals["t1"])
	assert.Equal(t, types.Score(0), gEnded.Success.Totals["t2"])
	assert.Equal(t, types.GameStatusEnd, f.gameRepo.Games[gameID].Status)
}

func TestStartRound_BeforeOpenFails(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	roundID := types.NewRoundID()
	gameID := createGame(t, f, []events.TeamSetupV1{{ID: "t1", Name: "Alpha"}}, []types.RoundID{roundID}, nil, 1)

	result, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Equal(t, "StartRound", result.Failure.Command)
	assert.Equal(t, types.GameStatusEdit, f.gameRepo.Games[gameID].Status)
}

func TestStartRound_UnknownRoundFails(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, _, _ := seedBasicGame(t, f)

	result, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: types.NewRoundID()})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "does not belong")
}

func TestResolveAnswer_InactiveQuestionFails(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	result, err := f.svc.ResolveAnswer(ctx, events.AnswerResolveRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
		Answer: events.AnswerEventV1{TeamID: "t1", Correct: boolPtr(true)},
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "no question is active")
}

func TestResolveAnswer_RejectedAnswerLeavesStateUntouched(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)

	// No organizer verdict on a basic answer is an invalid command.
	result, err := f.svc.ResolveAnswer(ctx, events.AnswerResolveRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID,
		Answer: events.AnswerEventV1{TeamID: "t1"},
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())

	state, err := f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	assert.Equal(t, types.QuestionStatusActive, state.Status)
	assert.Equal(t, types.GameStatusQuestionActive, f.gameRepo.Games[gameID].Status)
}

func TestHandleTimerEnd_ClosesBasicQuestion(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)

	endSeq := fireTimerEnd(t, f, gameID)
	result, err := f.svc.HandleTimerEnd(ctx, events.TimerEndedPayloadV1{GameID: gameID, EndSeq: endSeq})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, types.QuestionStatusResolved, result.Success.QuestionStatus)
	assert.Empty(t, result.Success.Deltas)
	assert.Equal(t, types.GameStatusQuestionEnd, f.gameRepo.Games[gameID].Status)
}

// seedRiddleGame creates an opened game whose single round is an image
// riddle with three clues.
func seedRiddleGame(t *testing.T, f *testFixture) (types.GameID, types.RoundID, types.QuestionID) {
	t.Helper()
	ctx := context.Background()

	roundID := types.NewRoundID()
	questionID := types.NewQuestionID()

	gameID := createGame(t, f, []events.TeamSetupV1{
		{ID: "t1", Name: "Alpha", Players: []events.PlayerSetupV1{{ID: "p1", Name: "Ann"}}},
		{ID: "t2", Name: "Beta", Players: []events.PlayerSetupV1{{ID: "p2", Name: "Ben"}}},
	}, []types.RoundID{roundID}, nil, 42)

	f.roundRepo.Rounds[roundID] = &rounddomain.Round{
		ID:                 roundID,
		GameID:             gameID,
		Type:               types.RoundTypeImageRiddle,
		RewardsPerQuestion: 4,
		ThinkingTime:       15,
		QuestionIDs:        []types.QuestionID{questionID},
		CurrentQuestionIdx: -1,
	}
	f.roundRepo.Questions[questionID] = &rounddomain.Question{
		ID:      questionID,
		RoundID: roundID,
		Type:    types.RoundTypeImageRiddle,
		Clues:   []string{"blurred", "sharper", "obvious"},
	}

	result, err := f.svc.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	return gameID, roundID, questionID
}

func TestHandleTimerEnd_RiddleAdvancesClueAndRearms(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedRiddleGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)
	require.Len(t, f.timerSched.Scheduled, 1)

	endSeq := fireTimerEnd(t, f, gameID)
	result, err := f.svc.HandleTimerEnd(ctx, events.TimerEndedPayloadV1{GameID: gameID, EndSeq: endSeq})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	// The question stays open on the next clue.
	state, err := f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ClueIdx)
	assert.Equal(t, types.QuestionStatusActive, state.Status)
	assert.Equal(t, types.GameStatusQuestionActive, f.gameRepo.Games[gameID].Status)

	// The clock restarted under a fresh sequence with a fresh watchdog.
	timer := f.timerRepo.Timers[gameID]
	assert.Equal(t, types.TimerStatusStarted, timer.Status)
	assert.Equal(t, endSeq+1, timer.EndSeq)
	require.Len(t, f.timerSched.Scheduled, 2)
	assert.Equal(t, endSeq+1, f.timerSched.Scheduled[1].EndSeq)

	// The last clue closes the question for good.
	for i := 0; i < 2; i++ {
		seq := fireTimerEnd(t, f, gameID)
		result, err = f.svc.HandleTimerEnd(ctx, events.TimerEndedPayloadV1{GameID: gameID, EndSeq: seq})
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
	}
	state, err = f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ClueIdx)
	assert.Equal(t, types.QuestionStatusResolved, state.Status)
	assert.Equal(t, types.GameStatusQuestionEnd, f.gameRepo.Games[gameID].Status)
}

func TestHandleTimerEnd_RedeliveryIsRefused(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedRiddleGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)

	endSeq := fireTimerEnd(t, f, gameID)
	result, err := f.svc.HandleTimerEnd(ctx, events.TimerEndedPayloadV1{GameID: gameID, EndSeq: endSeq})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	// A redelivered end event carries the consumed sequence and must not
	// advance the clue again.
	result, err = f.svc.HandleTimerEnd(ctx, events.TimerEndedPayloadV1{GameID: gameID, EndSeq: endSeq})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "stale")

	state, err := f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ClueIdx)
	assert.Equal(t, types.QuestionStatusActive, state.Status)
	require.Len(t, f.timerSched.Scheduled, 2, "no extra watchdog for a refused end")
}

func TestResetQuestion_IsIdempotent(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)

	// Dirty the realtime sub-state, then reset twice.
	state, err := f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	state.Press("p1", f.clock.Now())
	state.Tries["t1"] = 2

	for i := 0; i < 2; i++ {
		result, err := f.svc.ResetQuestion(ctx, events.QuestionResetRequestedPayloadV1{
			GameID: gameID, RoundID: roundID, QuestionID: questionID,
		})
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
	}

	state, err = f.roundRepo.GetQuestionState(ctx, nil, gameID, questionID)
	require.NoError(t, err)
	assert.Empty(t, state.Buzzed)
	assert.Empty(t, state.Tries)
	assert.Equal(t, types.QuestionStatusActive, state.Status)
}

func TestScheduleGame_ParsesNaturalTime(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	roundID := types.NewRoundID()
	gameID := createGame(t, f, []events.TeamSetupV1{{ID: "t1", Name: "Alpha"}}, []types.RoundID{roundID}, nil, 7)

	result, err := f.svc.ScheduleGame(ctx, events.GameScheduleRequestedPayloadV1{
		GameID:        gameID,
		StartTimeText: "in 2 hours",
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.WithinDuration(t, f.clock.Now().Add(2*time.Hour), result.Success.StartAt, time.Minute)

	require.Len(t, f.startSched.Scheduled, 1)
	assert.Equal(t, gameID, f.startSched.Scheduled[0].GameID)
	require.NotNil(t, f.gameRepo.Games[gameID].ScheduledStartAt)
}

func TestScheduleGame_UnparseableTimeFails(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	gameID := createGame(t, f, []events.TeamSetupV1{{ID: "t1", Name: "Alpha"}}, []types.RoundID{types.NewRoundID()}, nil, 7)

	result, err := f.svc.ScheduleGame(ctx, events.GameScheduleRequestedPayloadV1{
		GameID:        gameID,
		StartTimeText: "xyzzy",
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Empty(t, f.startSched.Scheduled)
}

func TestCreateGame_RejectsBlankTeamName(t *testing.T) {
	f := newTestFixture()

	result, err := f.svc.CreateGame(context.Background(), events.GameCreateRequestedPayloadV1{
		Teams:    []events.TeamSetupV1{{ID: "t1", Name: "   "}},
		RoundIDs: []types.RoundID{types.NewRoundID()},
		Seed:     7,
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Equal(t, "CreateGame", result.Failure.Command)
}

func TestCreateGame_EditableUntilOpened(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	gameID := createGame(t, f, []events.TeamSetupV1{{ID: "t1", Name: "Alpha"}}, []types.RoundID{types.NewRoundID()}, nil, 3)
	assert.Equal(t, types.GameStatusEdit, f.gameRepo.Games[gameID].Status)

	// Opening from authoring passes through game_start into the lobby.
	result, err := f.svc.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, types.GameStatusHome, f.gameRepo.Games[gameID].Status)
}

func TestSwitchChooser_SkipsExcludedTeams(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, _ := seedBasicGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)

	order := f.gameRepo.Games[gameID].Rotation.Order
	result, err := f.svc.SwitchChooser(ctx, events.ChooserSwitchRequestedPayloadV1{
		GameID:   gameID,
		Excluded: []types.TeamID{order[0]},
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, order[1], result.Success.TeamID)

	// Excluding every team leaves the rotation where it was.
	result, err = f.svc.SwitchChooser(ctx, events.ChooserSwitchRequestedPayloadV1{
		GameID:   gameID,
		Excluded: order,
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
}

func TestStartSpecial_WithoutSpecialRoundFails(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	gameID, roundID, questionID := seedBasicGame(t, f)

	_, err := f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)
	_, err = f.svc.EndQuestion(ctx, events.QuestionEndRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID})
	require.NoError(t, err)
	_, err = f.svc.EndRound(ctx, events.RoundEndRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)

	result, err := f.svc.StartSpecial(ctx, events.SpecialStartRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "no special round")
}

func TestStartSpecial_EntersBonusBranch(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	roundID := types.NewRoundID()
	specialID := types.NewRoundID()
	questionID := types.NewQuestionID()
	specialQID := types.NewQuestionID()

	gameID := createGame(t, f, []events.TeamSetupV1{
		{ID: "t1", Name: "Alpha"},
		{ID: "t2", Name: "Beta"},
	}, []types.RoundID{roundID}, &specialID, 42)

	f.roundRepo.Rounds[roundID] = &rounddomain.Round{
		ID: roundID, GameID: gameID, Type: types.RoundTypeBasic,
		RewardsPerQuestion: 2, QuestionIDs: []types.QuestionID{questionID}, CurrentQuestionIdx: -1,
	}
	f.roundRepo.Questions[questionID] = &rounddomain.Question{ID: questionID, RoundID: roundID, Type: types.RoundTypeBasic}
	f.roundRepo.Rounds[specialID] = &rounddomain.Round{
		ID: specialID, GameID: gameID, Type: types.RoundTypeBasic,
		RewardsPerQuestion: 5, QuestionIDs: []types.QuestionID{specialQID}, CurrentQuestionIdx: -1,
	}
	f.roundRepo.Questions[specialQID] = &rounddomain.Question{ID: specialQID, RoundID: specialID, Type: types.RoundTypeBasic}

	_, err := f.svc.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	_, err = f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)
	_, err = f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0})
	require.NoError(t, err)
	_, err = f.svc.EndQuestion(ctx, events.QuestionEndRequestedPayloadV1{GameID: gameID, RoundID: roundID, QuestionID: questionID})
	require.NoError(t, err)
	_, err = f.svc.EndRound(ctx, events.RoundEndRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)

	result, err := f.svc.StartSpecial(ctx, events.SpecialStartRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, specialID, result.Success.RoundID)
	assert.Equal(t, types.GameStatusSpecialHome, f.gameRepo.Games[gameID].Status)

	// The question machinery runs under the special statuses.
	qStarted, err := f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: specialID, QuestionID: specialQID, Order: 0,
	})
	require.NoError(t, err)
	require.True(t, qStarted.IsSuccess())
	assert.Equal(t, types.GameStatusSpecialActive, f.gameRepo.Games[gameID].Status)
}

func TestStartQuestion_ChooserTeamGetsFocus(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	roundID := types.NewRoundID()
	questionID := types.NewQuestionID()

	gameID := createGame(t, f, []events.TeamSetupV1{
		{ID: "t1", Name: "Alpha", Players: []events.PlayerSetupV1{{ID: "p1", Name: "Ann"}}},
		{ID: "t2", Name: "Beta", Players: []events.PlayerSetupV1{{ID: "p2", Name: "Ben"}}},
	}, []types.RoundID{roundID}, nil, 42)

	f.roundRepo.Rounds[roundID] = &rounddomain.Round{
		ID:                 roundID,
		GameID:             gameID,
		Type:               types.RoundTypeMCQ,
		RewardsPerQuestion: 2,
		QuestionIDs:        []types.QuestionID{questionID},
		CurrentQuestionIdx: -1,
	}
	f.roundRepo.Questions[questionID] = &rounddomain.Question{
		ID:      questionID,
		RoundID: roundID,
		Type:    types.RoundTypeMCQ,
		Choices: []string{"a", "b"},
	}

	_, err := f.svc.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	require.NoError(t, err)
	_, err = f.svc.StartRound(ctx, events.RoundStartRequestedPayloadV1{GameID: gameID, RoundID: roundID})
	require.NoError(t, err)

	qStarted, err := f.svc.StartQuestion(ctx, events.QuestionStartRequestedPayloadV1{
		GameID: gameID, RoundID: roundID, QuestionID: questionID, Order: 0,
	})
	require.NoError(t, err)
	require.True(t, qStarted.IsSuccess())
	require.NotEmpty(t, qStarted.Success.ChooserTeam)

	chooser := qStarted.Success.ChooserTeam
	statusByTeam := map[types.TeamID]types.PlayerStatus{
		"t1": f.gameRepo.PlayerStatus("p1"),
		"t2": f.gameRepo.PlayerStatus("p2"),
	}
	for team, status := range statusByTeam {
		if team == chooser {
			assert.Equal(t, types.PlayerStatusFocus, status, "chooser team sees the answering affordance")
		} else {
			assert.Equal(t, types.PlayerStatusIdle, status)
		}
	}
}
