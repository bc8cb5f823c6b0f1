package timerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	timerdomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Repository is the timer persistence contract. Methods accept a bun.IDB so
// callers can pass the surrounding transaction; nil falls back to the pool.
type Repository interface {
	CreateTimer(ctx context.Context, db bun.IDB, timer *timerdomain.Timer) error
	GetTimer(ctx context.Context, db bun.IDB, gameID types.GameID) (*timerdomain.Timer, error)
	SaveTimer(ctx context.Context, db bun.IDB, timer *timerdomain.Timer) error
}

// TimerDBImpl is the bun-backed Repository.
type TimerDBImpl struct {
	DB *bun.DB
}

func (r *TimerDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

// CreateTimer inserts the game's timer row, replacing any leftover from a
// previous run of the same game id.
func (r *TimerDBImpl) CreateTimer(ctx context.Context, db bun.IDB, timer *timerdomain.Timer) error {
	row := fromDomain(timer)
	_, err := r.idb(db).NewInsert().
		Model(row).
		On("CONFLICT (game_id) DO UPDATE").
		Set("status = EXCLUDED.status, duration_seconds = EXCLUDED.duration_seconds, remaining_seconds = EXCLUDED.remaining_seconds, forward = EXCLUDED.forward, managed_by = EXCLUDED.managed_by, started_at = EXCLUDED.started_at, end_seq = EXCLUDED.end_seq, end_processed_seq = EXCLUDED.end_processed_seq, updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create timer for game %s: %w", timer.GameID, err)
	}
	return nil
}

func (r *TimerDBImpl) GetTimer(ctx context.Context, db bun.IDB, gameID types.GameID) (*timerdomain.Timer, error) {
	var row Timer
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("t.game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "timer", ID: gameID.String()}
		}
		return nil, fmt.Errorf("failed to fetch timer for game %s: %w", gameID, err)
	}
	return toDomain(&row), nil
}

func (r *TimerDBImpl) SaveTimer(ctx context.Context, db bun.IDB, timer *timerdomain.Timer) error {
	row := fromDomain(timer)
	_, err := r.idb(db).NewUpdate().
		Model(row).
		WherePK().
		Set("status = ?", row.Status).
		Set("duration_seconds = ?", row.DurationSeconds).
		Set("remaining_seconds = ?", row.RemainingSeconds).
		Set("forward = ?", row.Forward).
		Set("managed_by = ?", row.ManagedBy).
		Set("started_at = ?", row.StartedAt).
		Set("end_seq = ?", row.EndSeq).
		Set("end_processed_seq = ?", row.EndProcessedSeq).
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save timer for game %s: %w", timer.GameID, err)
	}
	return nil
}
