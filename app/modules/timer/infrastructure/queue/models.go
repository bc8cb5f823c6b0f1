package timerqueue

// TimerEndJob is the watchdog for one countdown run. It carries the end
// sequence planted at start time; the service's latch discards it if the
// timer was stopped, reset or restarted since.
type TimerEndJob struct {
	GameID string `json:"game_id"`
	EndSeq int64  `json:"end_seq"`
}

// Kind returns the job type identifier for River.
func (TimerEndJob) Kind() string { return "timer_end" }
