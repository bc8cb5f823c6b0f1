package types

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// GameID identifies a game session.
type GameID uuid.UUID

func (id GameID) String() string { return uuid.UUID(id).String() }

func (id GameID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewGameID generates a random GameID.
func NewGameID() GameID { return GameID(uuid.New()) }

// RoundID identifies a round within a game.
type RoundID uuid.UUID

func (id RoundID) String() string { return uuid.UUID(id).String() }

func (id RoundID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewRoundID() RoundID { return RoundID(uuid.New()) }

// QuestionID identifies a question within a round.
type QuestionID uuid.UUID

func (id QuestionID) String() string { return uuid.UUID(id).String() }

func (id QuestionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewQuestionID() QuestionID { return QuestionID(uuid.New()) }

// TeamID identifies a team. Stable for the lifetime of a game.
type TeamID string

func (id TeamID) String() string { return string(id) }

// PlayerID identifies a player.
type PlayerID string

func (id PlayerID) String() string { return string(id) }

// OrganizerID identifies the moderator driving a game.
type OrganizerID string

func (id OrganizerID) String() string { return string(id) }

// Value/Scan implementations so the wrapped uuids round-trip through bun.

func (id GameID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *GameID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

func (id RoundID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *RoundID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

func (id QuestionID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *QuestionID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// MarshalText/UnmarshalText keep the wrapped uuids as canonical strings in JSON
// event payloads.

func (id GameID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *GameID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id RoundID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RoundID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id QuestionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *QuestionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseGameID parses a GameID from its string form.
func ParseGameID(s string) (GameID, error) {
	u, err := uuid.Parse(s)
	return GameID(u), err
}

// ParseRoundID parses a RoundID from its string form.
func ParseRoundID(s string) (RoundID, error) {
	u, err := uuid.Parse(s)
	return RoundID(u), err
}

// ParseQuestionID parses a QuestionID from its string form.
func ParseQuestionID(s string) (QuestionID, error) {
	u, err := uuid.Parse(s)
	return QuestionID(u), err
}
