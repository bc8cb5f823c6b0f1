package timerdomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

func TestTimer_StartStopResume(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	timer := NewTimer(types.NewGameID(), 30)

	require.NoError(t, timer.Start(now, 0, false, "question"))
	assert.Equal(t, types.TimerStatusStarted, timer.Status)
	assert.Equal(t, int64(1), timer.EndSeq)

	deadline, ok := timer.Deadline()
	require.True(t, ok)
	assert.Equal(t, now.Add(30*time.Second), deadline)

	// Stop after 10s banks 20s.
	require.NoError(t, timer.Stop(now.Add(10*time.Second)))
	assert.Equal(t, types.TimerStatusStopped, timer.Status)
	assert.InDelta(t, 20, timer.RemainingSeconds, 0.001)

	// Resume runs only the banked time and bumps the sequence.
	resumeAt := now.Add(time.Minute)
	require.NoError(t, timer.Start(resumeAt, 0, false, "question"))
	assert.Equal(t, int64(2), timer.EndSeq)
	deadline, ok = timer.Deadline()
	require.True(t, ok)
	assert.Equal(t, resumeAt.Add(20*time.Second), deadline)
}

func TestTimer_StartWhileRunning(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 30)
	require.NoError(t, timer.Start(now, 0, false, ""))

	err := timer.Start(now, 0, false, "")
	var transitionErr *gameerr.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestTimer_StopWhenNotRunning(t *testing.T) {
	timer := NewTimer(types.NewGameID(), 30)
	err := timer.Stop(time.Now())
	var transitionErr *gameerr.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestTimer_EndLatchFiresOnce(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 5)
	require.NoError(t, timer.Start(now, 0, false, ""))
	seq := timer.EndSeq

	assert.True(t, timer.End(seq), "first end for the current run must fire")
	assert.Equal(t, types.TimerStatusEnded, timer.Status)

	assert.False(t, timer.End(seq), "replay of the same sequence must not fire")
}

func TestTimer_EndIgnoresStaleSequence(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 5)
	require.NoError(t, timer.Start(now, 0, false, ""))
	staleSeq := timer.EndSeq

	require.NoError(t, timer.Stop(now.Add(time.Second)))
	require.NoError(t, timer.Start(now.Add(2*time.Second), 0, false, ""))

	assert.False(t, timer.End(staleSeq), "an end scheduled for a previous run must not fire")
	assert.Equal(t, types.TimerStatusStarted, timer.Status)
}

func TestTimer_EndIgnoredWhenStopped(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 5)
	require.NoError(t, timer.Start(now, 0, false, ""))
	seq := timer.EndSeq
	require.NoError(t, timer.Stop(now.Add(time.Second)))

	assert.False(t, timer.End(seq))
	assert.Equal(t, types.TimerStatusStopped, timer.Status)
}

func TestTimer_ForwardNeverEnds(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 0)
	require.NoError(t, timer.Start(now, 0, true, "stopwatch"))

	_, ok := timer.Deadline()
	assert.False(t, ok)
	assert.False(t, timer.End(timer.EndSeq))
}

func TestTimer_ResetRearms(t *testing.T) {
	now := time.Now()
	timer := NewTimer(types.NewGameID(), 30)
	require.NoError(t, timer.Start(now, 0, false, ""))
	require.NoError(t, timer.Stop(now.Add(5*time.Second)))

	timer.Reset(45)
	assert.Equal(t, types.TimerStatusReset, timer.Status)
	assert.Equal(t, 45, timer.DurationSeconds)
	assert.InDelta(t, 45, timer.RemainingSeconds, 0.001)
}
