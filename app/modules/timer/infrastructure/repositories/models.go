package timerdb

import (
	"time"

	"github.com/uptrace/bun"

	timerdomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Timer is the persisted shared timer, one row per game.
type Timer struct {
	bun.BaseModel `bun:"table:timers,alias:t"`

	GameID           types.GameID      `bun:"game_id,pk"`
	Status           types.TimerStatus `bun:"status,notnull"`
	DurationSeconds  int               `bun:"duration_seconds,notnull"`
	RemainingSeconds float64           `bun:"remaining_seconds,notnull"`
	Forward          bool              `bun:"forward,notnull,default:false"`
	ManagedBy        string            `bun:"managed_by"`
	StartedAt        time.Time         `bun:"started_at,nullzero"`
	EndSeq           int64             `bun:"end_seq,notnull,default:0"`
	EndProcessedSeq  int64             `bun:"end_processed_seq,notnull,default:0"`
	UpdatedAt        time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func toDomain(row *Timer) *timerdomain.Timer {
	return &timerdomain.Timer{
		GameID:           row.GameID,
		Status:           row.Status,
		DurationSeconds:  row.DurationSeconds,
		RemainingSeconds: row.RemainingSeconds,
		Forward:          row.Forward,
		ManagedBy:        row.ManagedBy,
		StartedAt:        row.StartedAt,
		EndSeq:           row.EndSeq,
		EndProcessedSeq:  row.EndProcessedSeq,
	}
}

func fromDomain(t *timerdomain.Timer) *Timer {
	return &Timer{
		GameID:           t.GameID,
		Status:           t.Status,
		DurationSeconds:  t.DurationSeconds,
		RemainingSeconds: t.RemainingSeconds,
		Forward:          t.Forward,
		ManagedBy:        t.ManagedBy,
		StartedAt:        t.StartedAt,
		EndSeq:           t.EndSeq,
		EndProcessedSeq:  t.EndProcessedSeq,
	}
}
