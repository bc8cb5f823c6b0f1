package scoreservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// FakeLedgerRepository keeps ledgers in memory for service tests.
type FakeLedgerRepository struct {
	ledgers map[string]*scoredomain.Ledger
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{ledgers: map[string]*scoredomain.Ledger{}}
}

func ledgerKey(gameID types.GameID, scope events.LedgerScope) string {
	return fmt.Sprintf("%s/%s", gameID, scope)
}

func (f *FakeLedgerRepository) CreateLedgers(_ context.Context, _ bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	f.ledgers[ledgerKey(gameID, events.LedgerScopeRound)] = scoredomain.NewLedger(teams)
	f.ledgers[ledgerKey(gameID, events.LedgerScopeGame)] = scoredomain.NewLedger(teams)
	return nil
}

func (f *FakeLedgerRepository) GetLedger(_ context.Context, _ bun.IDB, gameID types.GameID, scope events.LedgerScope) (*scoredomain.Ledger, error) {
	ledger, ok := f.ledgers[ledgerKey(gameID, scope)]
	if !ok {
		return nil, &gameerr.NotFoundError{Kind: "ledger", ID: ledgerKey(gameID, scope)}
	}
	return ledger, nil
}

func (f *FakeLedgerRepository) SaveLedger(_ context.Context, _ bun.IDB, gameID types.GameID, scope events.LedgerScope, ledger *scoredomain.Ledger) error {
	f.ledgers[ledgerKey(gameID, scope)] = ledger
	return nil
}

func (f *FakeLedgerRepository) ResetRoundLedger(_ context.Context, _ bun.IDB, gameID types.GameID, teams []types.TeamID) error {
	f.ledgers[ledgerKey(gameID, events.LedgerScopeRound)] = scoredomain.NewLedger(teams)
	return nil
}
