// Package events defines the versioned topics and payloads shared by the
// module routers and the notification streams.
package events

import (
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Game lifecycle topics.
const (
	GameCreateRequestedV1 = "game.create.requested.v1"
	GameCreatedV1         = "game.created.v1"

	GameOpenRequestedV1     = "game.open.requested.v1"
	GameOpenedV1            = "game.opened.v1"
	GameScheduleRequestedV1 = "game.schedule.requested.v1"
	GameScheduledV1         = "game.scheduled.v1"

	RoundStartRequestedV1 = "game.round.start.requested.v1"
	RoundStartedV1        = "game.round.started.v1"
	RoundEndRequestedV1   = "game.round.end.requested.v1"
	RoundEndedV1          = "game.round.ended.v1"

	QuestionStartRequestedV1 = "game.question.start.requested.v1"
	QuestionStartedV1        = "game.question.started.v1"
	QuestionEndRequestedV1   = "game.question.end.requested.v1"
	QuestionEndedV1          = "game.question.ended.v1"
	QuestionResetRequestedV1 = "game.question.reset.requested.v1"
	QuestionResetV1          = "game.question.reset.v1"

	AnswerResolveRequestedV1 = "game.answer.resolve.requested.v1"
	AnswerResolvedV1         = "game.answer.resolved.v1"

	ChooserSwitchRequestedV1 = "chooser.switch.requested.v1"
	ChooserSwitchedV1        = "chooser.switched.v1"

	SpecialStartRequestedV1 = "game.special.start.requested.v1"
	SpecialStartedV1        = "game.special.started.v1"

	GameEndRequestedV1 = "game.end.requested.v1"
	GameEndedV1        = "game.ended.v1"

	GameCommandFailedV1 = "game.command.failed.v1"
)

// TeamSetupV1 is the authored shape of one team at game creation.
type TeamSetupV1 struct {
	ID      types.TeamID    `json:"id"`
	Name    string          `json:"name"`
	Color   string          `json:"color,omitempty"`
	Players []PlayerSetupV1 `json:"players,omitempty"`
}

// PlayerSetupV1 is one registered player.
type PlayerSetupV1 struct {
	ID   types.PlayerID `json:"id"`
	Name string         `json:"name"`
}

// GameCreateRequestedPayloadV1 registers a session with its teams and
// players. The created game sits in game_edit until it is opened.
type GameCreateRequestedPayloadV1 struct {
	Teams          []TeamSetupV1   `json:"teams"`
	RoundIDs       []types.RoundID `json:"round_ids,omitempty"`
	SpecialRoundID *types.RoundID  `json:"special_round_id,omitempty"`
	Seed           int64           `json:"seed"`
}

// GameCreatedPayloadV1 reports the new session's id.
type GameCreatedPayloadV1 struct {
	GameID types.GameID     `json:"game_id"`
	Status types.GameStatus `json:"status"`
}

// GameOpenRequestedPayloadV1 asks to open the lobby (game_start -> game_home).
type GameOpenRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
}

// GameOpenedPayloadV1 confirms the lobby opened.
type GameOpenedPayloadV1 struct {
	GameID types.GameID     `json:"game_id"`
	Status types.GameStatus `json:"status"`
}

// GameScheduleRequestedPayloadV1 schedules a future open from a free-form
// time expression ("friday 8pm").
type GameScheduleRequestedPayloadV1 struct {
	GameID        types.GameID `json:"game_id"`
	StartTimeText string       `json:"start_time_text"`
	Timezone      string       `json:"timezone,omitempty"`
}

// GameScheduledPayloadV1 confirms the scheduled open time.
type GameScheduledPayloadV1 struct {
	GameID  types.GameID `json:"game_id"`
	StartAt time.Time    `json:"start_at"`
}

// RoundStartRequestedPayloadV1 enters round_start for the given round.
type RoundStartRequestedPayloadV1 struct {
	GameID  types.GameID  `json:"game_id"`
	RoundID types.RoundID `json:"round_id"`
}

// RoundStartedPayloadV1 reports the re-seeded rotation and the reachable
// ceiling for the round.
type RoundStartedPayloadV1 struct {
	GameID       types.GameID   `json:"game_id"`
	RoundID      types.RoundID  `json:"round_id"`
	ChooserOrder []types.TeamID `json:"chooser_order"`
	MaxPoints    types.Score    `json:"max_points"`
}

// RoundEndRequestedPayloadV1 leaves the current round.
type RoundEndRequestedPayloadV1 struct {
	GameID  types.GameID  `json:"game_id"`
	RoundID types.RoundID `json:"round_id"`
}

// RoundEndedPayloadV1 carries the ranking payouts applied on round end, if
// the round's scoring mode ranks teams.
type RoundEndedPayloadV1 struct {
	GameID  types.GameID                `json:"game_id"`
	RoundID types.RoundID               `json:"round_id"`
	Status  types.GameStatus            `json:"status"`
	Awards  map[types.TeamID]types.Score `json:"awards,omitempty"`
}

// QuestionStartRequestedPayloadV1 activates a question. Order is the
// question's index within the round; the chooser rotation only advances when
// it is positive.
type QuestionStartRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
	Order      int              `json:"order"`
}

// QuestionStartedPayloadV1 reports the freshly prepared realtime state.
type QuestionStartedPayloadV1 struct {
	GameID      types.GameID     `json:"game_id"`
	RoundID     types.RoundID    `json:"round_id"`
	QuestionID  types.QuestionID `json:"question_id"`
	ChooserTeam types.TeamID     `json:"chooser_team,omitempty"`
	ThinkingTime int             `json:"thinking_time"`
}

// QuestionEndRequestedPayloadV1 closes the active question.
type QuestionEndRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
}

// QuestionEndedPayloadV1 reports whether the round still has questions left.
type QuestionEndedPayloadV1 struct {
	GameID         types.GameID     `json:"game_id"`
	RoundID        types.RoundID    `json:"round_id"`
	QuestionID     types.QuestionID `json:"question_id"`
	RoundExhausted bool             `json:"round_exhausted"`
}

// QuestionResetRequestedPayloadV1 rebuilds the realtime sub-state from
// scratch. Idempotent.
type QuestionResetRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
}

// QuestionResetPayloadV1 confirms the reset.
type QuestionResetPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
}

// AnswerResolveRequestedPayloadV1 submits an answer event for the active
// question.
type AnswerResolveRequestedPayloadV1 struct {
	GameID     types.GameID     `json:"game_id"`
	RoundID    types.RoundID    `json:"round_id"`
	QuestionID types.QuestionID `json:"question_id"`
	Answer     AnswerEventV1    `json:"answer"`
}

// AnswerResolvedPayloadV1 reports the score effect and resulting question
// status of one resolved answer.
type AnswerResolvedPayloadV1 struct {
	GameID         types.GameID         `json:"game_id"`
	RoundID        types.RoundID        `json:"round_id"`
	QuestionID     types.QuestionID     `json:"question_id"`
	Deltas         []types.ScoreDelta   `json:"deltas,omitempty"`
	QuestionStatus types.QuestionStatus `json:"question_status"`
	WinnerTeam     types.TeamID         `json:"winner_team,omitempty"`
}

// ChooserSwitchRequestedPayloadV1 advances the rotation by hand.
type ChooserSwitchRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
	// Excluded teams are skipped; the command fails when every team is
	// excluded.
	Excluded []types.TeamID `json:"excluded,omitempty"`
}

// ChooserSwitchedPayloadV1 reports the new acting team.
type ChooserSwitchedPayloadV1 struct {
	GameID     types.GameID `json:"game_id"`
	TeamID     types.TeamID `json:"team_id"`
	ChooserIdx int          `json:"chooser_idx"`
}

// SpecialStartRequestedPayloadV1 enters the bonus-round branch after a
// round end. Fails when the game has no special round configured.
type SpecialStartRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
}

// SpecialStartedPayloadV1 confirms the branch entry.
type SpecialStartedPayloadV1 struct {
	GameID  types.GameID  `json:"game_id"`
	RoundID types.RoundID `json:"round_id"`
}

// GameEndRequestedPayloadV1 freezes the game.
type GameEndRequestedPayloadV1 struct {
	GameID types.GameID `json:"game_id"`
}

// GameEndedPayloadV1 carries the frozen final totals.
type GameEndedPayloadV1 struct {
	GameID types.GameID                 `json:"game_id"`
	Totals map[types.TeamID]types.Score `json:"totals"`
}

// GameCommandFailedPayloadV1 is the shared failure payload for game-level
// commands.
type GameCommandFailedPayloadV1 struct {
	GameID  types.GameID `json:"game_id"`
	Command string       `json:"command"`
	Reason  string       `json:"reason"`
}
