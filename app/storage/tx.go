// Package storage wraps bun transactions with explicit retry bounds and
// backoff. Every mutating command in the engine runs inside exactly one
// WithinTx call; repositories accept bun.IDB so the same transaction spans
// every component a command touches.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// TxOptions bounds the optimistic retry loop.
type TxOptions struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Isolation   sql.IsolationLevel
}

// DefaultTxOptions retries quickly a handful of times; conflicts between
// concurrent game commands are common but short-lived.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		MaxAttempts: 5,
		BaseBackoff: 10 * time.Millisecond,
		MaxBackoff:  250 * time.Millisecond,
		Isolation:   sql.LevelSerializable,
	}
}

// WithinTx runs fn in a single serializable transaction, retrying on
// serialization conflicts up to opts.MaxAttempts. Non-conflict errors abort
// immediately. When the budget is exhausted it returns ConcurrentConflictError.
func WithinTx(ctx context.Context, db *bun.DB, opts TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		err := db.RunInTx(ctx, &sql.TxOptions{Isolation: opts.Isolation}, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err

		if attempt == opts.MaxAttempts {
			break
		}
		if err := sleepBackoff(ctx, opts, attempt); err != nil {
			return err
		}
	}

	return &ConcurrentConflictError{Attempts: opts.MaxAttempts, Last: lastErr}
}

// isSerializationFailure matches the postgres states the retry loop may
// replay: serialization_failure and deadlock_detected.
func isSerializationFailure(err error) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Field('C') {
	case "40001", "40P01":
		return true
	}
	return false
}

func sleepBackoff(ctx context.Context, opts TxOptions, attempt int) error {
	backoff := opts.BaseBackoff << (attempt - 1)
	if opts.MaxBackoff > 0 && backoff > opts.MaxBackoff {
		backoff = opts.MaxBackoff
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
