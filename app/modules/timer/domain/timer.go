// Package timerdomain models the per-game shared timer: a countdown (or
// stopwatch) that every command in the game can arm, pause, resume and reset,
// with a sequence latch so each natural end fires exactly once.
package timerdomain

import (
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Timer is one game's shared timer.
type Timer struct {
	GameID types.GameID
	Status types.TimerStatus

	// DurationSeconds is the armed duration. RemainingSeconds tracks what is
	// left across stop/resume cycles; it equals DurationSeconds after a reset.
	DurationSeconds  int
	RemainingSeconds float64

	// Forward timers count up and never end on their own.
	Forward   bool
	ManagedBy string
	StartedAt time.Time

	// EndSeq increments on every start; a natural end only fires when it
	// carries the current sequence. EndProcessedSeq is the latch: the last
	// sequence whose end already fired.
	EndSeq          int64
	EndProcessedSeq int64
}

// NewTimer returns a reset timer armed with duration.
func NewTimer(gameID types.GameID, durationSeconds int) *Timer {
	return &Timer{
		GameID:           gameID,
		Status:           types.TimerStatusReset,
		DurationSeconds:  durationSeconds,
		RemainingSeconds: float64(durationSeconds),
	}
}

// Start runs the timer. From stopped it resumes with the remaining time; from
// reset or ended it runs the full armed duration. durationSeconds > 0
// re-arms first. Starting a running timer is an invalid transition.
func (t *Timer) Start(now time.Time, durationSeconds int, forward bool, managedBy string) error {
	if t.Status == types.TimerStatusStarted {
		return &gameerr.InvalidTransitionError{Entity: "timer", From: string(t.Status), To: string(types.TimerStatusStarted)}
	}
	if durationSeconds > 0 {
		t.DurationSeconds = durationSeconds
		t.RemainingSeconds = float64(durationSeconds)
	} else if t.Status != types.TimerStatusStopped {
		t.RemainingSeconds = float64(t.DurationSeconds)
	}
	t.Forward = forward
	t.ManagedBy = managedBy
	t.StartedAt = now
	t.Status = types.TimerStatusStarted
	t.EndSeq++
	return nil
}

// Stop pauses a running timer, banking the remaining time.
func (t *Timer) Stop(now time.Time) error {
	if t.Status != types.TimerStatusStarted {
		return &gameerr.InvalidTransitionError{Entity: "timer", From: string(t.Status), To: string(types.TimerStatusStopped)}
	}
	if !t.Forward {
		t.RemainingSeconds -= now.Sub(t.StartedAt).Seconds()
		if t.RemainingSeconds < 0 {
			t.RemainingSeconds = 0
		}
	}
	t.Status = types.TimerStatusStopped
	return nil
}

// Reset re-arms the timer from any state. durationSeconds > 0 replaces the
// armed duration.
func (t *Timer) Reset(durationSeconds int) {
	if durationSeconds > 0 {
		t.DurationSeconds = durationSeconds
	}
	t.RemainingSeconds = float64(t.DurationSeconds)
	t.Forward = false
	t.Status = types.TimerStatusReset
}

// Deadline returns when the running countdown ends naturally. Forward timers
// and non-running timers have no deadline.
func (t *Timer) Deadline() (time.Time, bool) {
	if t.Status != types.TimerStatusStarted || t.Forward {
		return time.Time{}, false
	}
	return t.StartedAt.Add(time.Duration(t.RemainingSeconds * float64(time.Second))), true
}

// End fires the natural end carried by endSeq. It reports whether this call
// won the latch; stale sequences, stopped timers and replays all return
// false without touching the state.
func (t *Timer) End(endSeq int64) bool {
	if t.Status != types.TimerStatusStarted || t.Forward {
		return false
	}
	if endSeq != t.EndSeq || endSeq <= t.EndProcessedSeq {
		return false
	}
	t.Status = types.TimerStatusEnded
	t.RemainingSeconds = 0
	t.EndProcessedSeq = endSeq
	return true
}
