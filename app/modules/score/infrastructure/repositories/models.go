package scoredb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Ledger is the persisted form of one scope's ledger. One row per
// (game, scope); totals and histories live in jsonb.
type Ledger struct {
	bun.BaseModel `bun:"table:score_ledgers,alias:sl"`

	ID        int64               `bun:"id,pk,autoincrement"`
	GameID    types.GameID        `bun:"game_id,notnull"`
	Scope     events.LedgerScope  `bun:"scope,notnull"`
	Data      *scoredomain.Ledger `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
