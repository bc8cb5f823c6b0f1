package events

import "github.com/Quiz-Night-Club/quiz-engine/app/shared/types"

// Score ledger topics.
const (
	ScoreIncreaseRequestedV1 = "score.increase.requested.v1"
	ScoreIncreasedV1         = "score.increased.v1"
	ScoreCommandFailedV1     = "score.command.failed.v1"
)

// LedgerScope selects which of a game's two ledgers a command addresses.
type LedgerScope string

const (
	// LedgerScopeRound is the round-scoped ledger, keyed by question id.
	LedgerScopeRound LedgerScope = "round"
	// LedgerScopeGame is the game-scoped ledger, keyed by round id.
	LedgerScopeGame LedgerScope = "game"
)

// ScoreIncreaseRequestedPayloadV1 applies one score delta. An empty TeamID
// with zero points records a progress checkpoint without changing totals.
type ScoreIncreaseRequestedPayloadV1 struct {
	GameID   types.GameID `json:"game_id"`
	Scope    LedgerScope  `json:"scope"`
	ScopeKey string       `json:"scope_key"`
	TeamID   types.TeamID `json:"team_id,omitempty"`
	Points   types.Score  `json:"points"`
}

// ScoreIncreasedPayloadV1 reports the totals after the delta.
type ScoreIncreasedPayloadV1 struct {
	GameID   types.GameID                 `json:"game_id"`
	Scope    LedgerScope                  `json:"scope"`
	ScopeKey string                       `json:"scope_key"`
	TeamID   types.TeamID                 `json:"team_id,omitempty"`
	Points   types.Score                  `json:"points"`
	Totals   map[types.TeamID]types.Score `json:"totals"`
}

// ScoreCommandFailedPayloadV1 is the failure payload for ledger commands.
type ScoreCommandFailedPayloadV1 struct {
	GameID  types.GameID `json:"game_id"`
	Command string       `json:"command"`
	Reason  string       `json:"reason"`
}
