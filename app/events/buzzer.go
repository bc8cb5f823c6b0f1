package events

import "github.com/Quiz-Night-Club/quiz-engine/app/shared/types"

// Buzzer race topics.
const (
	BuzzerPressRequestedV1   = "buzzer.press.requested.v1"
	BuzzerPressedV1          = "buzzer.pressed.v1"
	BuzzerReleaseRequestedV1 = "buzzer.release.requested.v1"
	BuzzerReleasedV1         = "buzzer.released.v1"
	PlayerCancelRequestedV1  = "buzzer.cancel.requested.v1"
	PlayerCanceledV1         = "buzzer.canceled.v1"
	BuzzerClearRequestedV1   = "buzzer.clear.requested.v1"
	BuzzerClearedV1          = "buzzer.cleared.v1"
	BuzzerCommandFailedV1    = "buzzer.command.failed.v1"
)

// BuzzerPressRequestedPayloadV1 is one player's press. Pressing twice, or
// pressing after a cancel, is a committed no-op rather than a failure.
type BuzzerPressRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
	PlayerID   types.PlayerID   `json:"player_id"`
}

// BuzzerPressedPayloadV1 reports the committed queue after a press.
type BuzzerPressedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	QuestionID types.QuestionID `json:"question_id"`
	Queue      []types.PlayerID `json:"queue"`
	Head       types.PlayerID   `json:"head,omitempty"`
}

// BuzzerReleaseRequestedPayloadV1 removes a player from the queue without
// penalty (empty or timed-out response).
type BuzzerReleaseRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
	PlayerID   types.PlayerID   `json:"player_id"`
}

// BuzzerReleasedPayloadV1 reports the queue after a release.
type BuzzerReleasedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	QuestionID types.QuestionID `json:"question_id"`
	Queue      []types.PlayerID `json:"queue"`
}

// PlayerCancelRequestedPayloadV1 removes a player from the race for the rest
// of the question.
type PlayerCancelRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
	PlayerID   types.PlayerID   `json:"player_id"`
}

// PlayerCanceledPayloadV1 reports the queue and cancel list after a cancel.
type PlayerCanceledPayloadV1 struct {
	GameID     types.GameID        `json:"game_id"`
	QuestionID types.QuestionID    `json:"question_id"`
	Queue      []types.PlayerID    `json:"queue"`
	Canceled   []types.CancelEntry `json:"canceled"`
}

// BuzzerClearRequestedPayloadV1 empties the queue. When PreserveCanceled is
// set the cancel list survives (invalidated head, rest of queue proceeds);
// otherwise both lists reset for a fresh attempt.
type BuzzerClearRequestedPayloadV1 struct {
	GameID           types.GameID     `json:"game_id"`
	RoundID          types.RoundID    `json:"round_id"`
	QuestionID       types.QuestionID `json:"question_id"`
	PreserveCanceled bool             `json:"preserve_canceled"`
}

// BuzzerClearedPayloadV1 confirms the clear.
type BuzzerClearedPayloadV1 struct {
	GameID           types.GameID     `json:"game_id"`
	QuestionID       types.QuestionID `json:"question_id"`
	PreserveCanceled bool             `json:"preserve_canceled"`
}

// BuzzerCommandFailedPayloadV1 is the shared failure payload for buzzer
// commands.
type BuzzerCommandFailedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	QuestionID types.QuestionID `json:"question_id"`
	Command    string           `json:"command"`
	Reason     string           `json:"reason"`
}
