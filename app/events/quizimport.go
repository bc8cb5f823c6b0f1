package events

import "github.com/Quiz-Night-Club/quiz-engine/app/shared/types"

// Question-set import topics.
const (
	QuizImportRequestedV1     = "quizimport.requested.v1"
	QuizImportedV1            = "quizimport.imported.v1"
	QuizImportCommandFailedV1 = "quizimport.command.failed.v1"
)

// QuizImportRequestedPayloadV1 carries one uploaded question-set file to
// import into a game under edit.
type QuizImportRequestedPayloadV1 struct {
	GameID   types.GameID `json:"game_id"`
	Filename string       `json:"filename"`
	Data     []byte       `json:"data"`
}

// QuizImportedPayloadV1 reports the authored rounds after a successful import.
type QuizImportedPayloadV1 struct {
	GameID        types.GameID    `json:"game_id"`
	RoundIDs      []types.RoundID `json:"round_ids"`
	RoundCount    int             `json:"round_count"`
	QuestionCount int             `json:"question_count"`
}

// QuizImportCommandFailedPayloadV1 is the failure payload for import commands.
type QuizImportCommandFailedPayloadV1 struct {
	GameID  types.GameID `json:"game_id"`
	Command string       `json:"command"`
	Reason  string       `json:"reason"`
}
