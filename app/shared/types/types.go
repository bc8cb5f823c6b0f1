package types

import "time"

// Score is a point total or delta. Deltas may be negative (mistake penalties).
type Score int

// GameStatus is the top-level lifecycle state of a game session.
type GameStatus string

const (
	GameStatusEdit           GameStatus = "game_edit"
	GameStatusStart          GameStatus = "game_start"
	GameStatusHome           GameStatus = "game_home"
	GameStatusRoundStart     GameStatus = "round_start"
	GameStatusQuestionActive GameStatus = "question_active"
	GameStatusQuestionEnd    GameStatus = "question_end"
	GameStatusRoundEnd       GameStatus = "round_end"
	GameStatusSpecialHome    GameStatus = "special_home"
	GameStatusSpecialActive  GameStatus = "special_active"
	GameStatusEnd            GameStatus = "game_end"
)

// QuestionStatus is the per-question lifecycle state.
type QuestionStatus string

const (
	QuestionStatusIdle     QuestionStatus = "idle"
	QuestionStatusActive   QuestionStatus = "active"
	QuestionStatusResolved QuestionStatus = "resolved"
)

// TimerStatus is the shared countdown state.
type TimerStatus string

const (
	TimerStatusReset   TimerStatus = "reset"
	TimerStatusStarted TimerStatus = "started"
	TimerStatusStopped TimerStatus = "stopped"
	TimerStatusEnded   TimerStatus = "ended"
)

// PlayerStatus reflects the client affordance currently offered to a player.
type PlayerStatus string

const (
	PlayerStatusIdle  PlayerStatus = "idle"
	PlayerStatusFocus PlayerStatus = "focus"
	PlayerStatusReady PlayerStatus = "ready"
)

// ScoringMode selects how a round converts performance into points.
type ScoringMode string

const (
	// ScoringModeRanking orders teams by performance and pays out from a fixed
	// reward table by rank. Max points are undefined for this mode.
	ScoringModeRanking ScoringMode = "ranking"
	// ScoringModeCompletionRate divides a fixed ceiling among correct units.
	ScoringModeCompletionRate ScoringMode = "completion_rate"
)

// RoundType is the closed set of round variants the engine runs.
type RoundType string

const (
	RoundTypeBasic       RoundType = "basic"
	RoundTypeMCQ         RoundType = "mcq"
	RoundTypeNagui       RoundType = "nagui"
	RoundTypeBuzzer      RoundType = "buzzer"
	RoundTypeImageRiddle RoundType = "image_riddle"
	RoundTypeQuoteRiddle RoundType = "quote_riddle"
	RoundTypeLabelling   RoundType = "labelling"
	RoundTypeQuote       RoundType = "quote"
	RoundTypeEnumeration RoundType = "enumeration"
	RoundTypeReordering  RoundType = "reordering"
	RoundTypeMatching    RoundType = "matching"
	RoundTypeOddOneOut   RoundType = "odd_one_out"
)

// RoundTypes lists every variant, in authoring order.
func RoundTypes() []RoundType {
	return []RoundType{
		RoundTypeBasic, RoundTypeMCQ, RoundTypeNagui,
		RoundTypeBuzzer, RoundTypeImageRiddle, RoundTypeQuoteRiddle,
		RoundTypeLabelling, RoundTypeQuote, RoundTypeEnumeration,
		RoundTypeReordering, RoundTypeMatching, RoundTypeOddOneOut,
	}
}

// Valid reports whether t is a known round type.
func (t RoundType) Valid() bool {
	for _, known := range RoundTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ScoreDelta is the outcome of resolving an answer: one team, one signed amount.
// A zero-value delta (empty team, zero points) is a legal no-op scoring event.
type ScoreDelta struct {
	TeamID TeamID `json:"team_id"`
	Points Score  `json:"points"`
}

// IsZero reports whether applying the delta would change no totals.
func (d ScoreDelta) IsZero() bool { return d.TeamID == "" || d.Points == 0 }

// BuzzEntry is one committed buzzer press.
type BuzzEntry struct {
	PlayerID  PlayerID  `json:"player_id"`
	PressedAt time.Time `json:"pressed_at"`
}

// CancelEntry records a player removed from the race for the rest of the
// question. ClueIdx is the clue visible when the cancel happened; -1 for
// round types without clues.
type CancelEntry struct {
	PlayerID   PlayerID  `json:"player_id"`
	CanceledAt time.Time `json:"canceled_at"`
	ClueIdx    int       `json:"clue_idx"`
}

// ProgressPoint is one step of a team's score history, keyed by the round or
// question that produced it.
type ProgressPoint struct {
	Key   string `json:"key"`
	Value Score  `json:"value"`
}
