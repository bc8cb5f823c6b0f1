package events

import "github.com/Quiz-Night-Club/quiz-engine/app/shared/types"

// AnswerEventV1 is the polymorphic answer a round policy resolves. Only the
// fields relevant to the active round type are set; policies validate the
// rest is absent or ignored.
type AnswerEventV1 struct {
	TeamID   types.TeamID   `json:"team_id,omitempty"`
	PlayerID types.PlayerID `json:"player_id,omitempty"`

	// Correct carries the organizer's verdict for types without a system
	// check (basic, buzzer family, enumeration citations).
	Correct *bool `json:"correct,omitempty"`

	// OptionIdx is the selected choice for mcq/nagui.
	OptionIdx *int `json:"option_idx,omitempty"`
	// NaguiMode is duo, square or cash.
	NaguiMode string `json:"nagui_mode,omitempty"`

	// ElementIdx is the label/fragment being revealed (labelling, quote).
	ElementIdx *int `json:"element_idx,omitempty"`

	// Citation is one enumerated item submitted under the shared clock.
	Citation string `json:"citation,omitempty"`

	// EdgeFrom/EdgeTo submit one matching-grid edge.
	EdgeFrom *int `json:"edge_from,omitempty"`
	EdgeTo   *int `json:"edge_to,omitempty"`

	// ItemIdx is the pick for odd-one-out.
	ItemIdx *int `json:"item_idx,omitempty"`

	// Placement is the full submitted order for reordering.
	Placement []int `json:"placement,omitempty"`
}
