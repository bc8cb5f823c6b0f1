package gamequeue

// GameStartJob opens a scheduled game's lobby when its start time arrives.
// Rescheduling the same game replaces the pending job through ByArgs
// uniqueness on the game id.
type GameStartJob struct {
	GameID string `json:"game_id"`
}

// Kind returns the job type identifier for River.
func (GameStartJob) Kind() string { return "game_start" }
