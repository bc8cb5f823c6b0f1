package scoredb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Repository is the ledger persistence contract. Methods accept a bun.IDB so
// callers can pass the surrounding transaction; nil falls back to the pool.
type Repository interface {
	CreateLedgers(ctx context.Context, db bun.IDB, gameID types.GameID, teams []types.TeamID) error
	GetLedger(ctx context.Context, db bun.IDB, gameID types.GameID, scope events.LedgerScope) (*scoredomain.Ledger, error)
	SaveLedger(ctx context.Context, db bun.IDB, gameID types.GameID, scope events.LedgerScope, ledger *scoredomain.Ledger) error
	ResetRoundLedger(ctx context.Context, db bun.IDB, gameID types.GameID, teams []types.TeamID) error
}

// LedgerDBImpl is the bun-backed Repository.
type LedgerDBImpl struct {
	DB *bun.DB
}

func (r *LedgerDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

// CreateLedgers seeds both scopes for a new game, replacing any leftovers
// from a previous run of the same game id.
func (r *LedgerDBImpl) CreateLedgers(ctx context.Context, db bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	for _, scope := range []events.LedgerScope{events.LedgerScopeRound, events.LedgerScopeGame} {
		row := &Ledger{
			GameID: gameID,
			Scope:  scope,
			Data:   scoredomain.NewLedger(teams),
		}
		_, err := r.idb(db).NewInsert().
			Model(row).
			On("CONFLICT (game_id, scope) DO UPDATE").
			Set("data = EXCLUDED.data, updated_at = now()").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create %s ledger for game %s: %w", scope, gameID, err)
		}
	}
	return nil
}

func (r *LedgerDBImpl) GetLedger(ctx context.Context, db bun.IDB, gameID types.GameID, scope events.LedgerScope) (*scoredomain.Ledger, error) {
	var row Ledger
	err := r.idb(db).NewSelect().
		Model(&row).
		Where("sl.game_id = ?", gameID).
		Where("sl.scope = ?", scope).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &gameerr.NotFoundError{Kind: "ledger", ID: fmt.Sprintf("%s/%s", gameID, scope)}
		}
		return nil, fmt.Errorf("failed to fetch %s ledger for game %s: %w", scope, gameID, err)
	}
	return row.Data, nil
}

func (r *LedgerDBImpl) SaveLedger(ctx context.Context, db bun.IDB, gameID types.GameID, scope events.LedgerScope, ledger *scoredomain.Ledger) error {
	_, err := r.idb(db).NewUpdate().
		Model((*Ledger)(nil)).
		Set("data = ?", ledger).
		Set("updated_at = now()").
		Where("game_id = ?", gameID).
		Where("scope = ?", scope).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save %s ledger for game %s: %w", scope, gameID, err)
	}
	return nil
}

// ResetRoundLedger re-seeds the round ledger at the start of a new round.
// The game ledger is untouched.
func (r *LedgerDBImpl) ResetRoundLedger(ctx context.Context, db bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	row := &Ledger{
		GameID: gameID,
		Scope:  events.LedgerScopeRound,
		Data:   scoredomain.NewLedger(teams),
	}
	_, err := r.idb(db).NewInsert().
		Model(row).
		On("CONFLICT (game_id, scope) DO UPDATE").
		Set("data = EXCLUDED.data, updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset round ledger for game %s: %w", gameID, err)
	}
	return nil
}
