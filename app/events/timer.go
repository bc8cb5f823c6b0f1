package events

import "github.com/Quiz-Night-Club/quiz-engine/app/shared/types"

// Timer topics.
const (
	TimerStartRequestedV1 = "timer.start.requested.v1"
	TimerStartedV1        = "timer.started.v1"
	TimerStopRequestedV1  = "timer.stop.requested.v1"
	TimerStoppedV1        = "timer.stopped.v1"
	TimerResetRequestedV1 = "timer.reset.requested.v1"
	TimerResetV1          = "timer.reset.v1"
	TimerEndedV1          = "timer.ended.v1"
	TimerCommandFailedV1  = "timer.command.failed.v1"
)

// TimerStartRequestedPayloadV1 arms and starts the game's timer.
type TimerStartRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
	// DurationSeconds overrides the armed duration when positive.
	DurationSeconds int `json:"duration_seconds,omitempty"`
	// Forward counts up (stopwatch) instead of down.
	Forward   bool   `json:"forward,omitempty"`
	ManagedBy string `json:"managed_by,omitempty"`
}

// TimerStartedPayloadV1 reports the running timer.
type TimerStartedPayloadV1 struct {
	GameID          types.GameID `json:"game_id"`
	DurationSeconds int          `json:"duration_seconds"`
	Forward         bool         `json:"forward"`
	StartedAtUnix   int64        `json:"started_at_unix"`
}

// TimerStopRequestedPayloadV1 pauses the timer.
type TimerStopRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
}

// TimerStoppedPayloadV1 confirms the stop.
type TimerStoppedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
}

// TimerResetRequestedPayloadV1 re-arms the timer from any state.
type TimerResetRequestedPayloadV1 struct {
	GameID          types.GameID `json:"game_id"`
	DurationSeconds int          `json:"duration_seconds,omitempty"`
}

// TimerResetPayloadV1 confirms the re-arm.
type TimerResetPayloadV1 struct {
	GameID          types.GameID `json:"game_id"`
	DurationSeconds int          `json:"duration_seconds"`
}

// TimerEndedPayloadV1 is published exactly once per natural end, by
// whichever observer wins the end latch.
type TimerEndedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
	// EndSeq distinguishes successive runs of the shared timer.
	EndSeq int64 `json:"end_seq"`
}

// TimerCommandFailedPayloadV1 is the failure payload for timer commands.
type TimerCommandFailedPayloadV1 struct {
	GameID  types.GameID `json:"game_id"`
	Command string       `json:"command"`
	Reason  string       `json:"reason"`
}
