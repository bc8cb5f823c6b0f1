package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/config"
)

func TestConcurrentConflictError(t *testing.T) {
	inner := errors.New("serialization failure")
	err := fmt.Errorf("run command: %w", &ConcurrentConflictError{Attempts: 5, Last: inner})

	assert.True(t, IsConcurrentConflict(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "5 conflicting attempts")

	assert.False(t, IsConcurrentConflict(errors.New("boom")))
	assert.False(t, IsConcurrentConflict(nil))
}

func TestDefaultTxOptions(t *testing.T) {
	opts := DefaultTxOptions()
	assert.Equal(t, sql.LevelSerializable, opts.Isolation)
	assert.Equal(t, 5, opts.MaxAttempts)
	assert.Positive(t, opts.BaseBackoff)
	assert.GreaterOrEqual(t, opts.MaxBackoff, opts.BaseBackoff)
}

func TestTxOptionsFromConfig(t *testing.T) {
	t.Run("nil config keeps defaults", func(t *testing.T) {
		assert.Equal(t, DefaultTxOptions(), TxOptionsFromConfig(nil))
	})

	t.Run("config overrides", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Game.TxMaxAttempts = 2
		cfg.Game.TxBaseBackoffMillis = 50
		cfg.Game.TxMaxBackoffMillis = 100

		opts := TxOptionsFromConfig(cfg)
		assert.Equal(t, 2, opts.MaxAttempts)
		assert.Equal(t, 50*time.Millisecond, opts.BaseBackoff)
		assert.Equal(t, 100*time.Millisecond, opts.MaxBackoff)
		assert.Equal(t, sql.LevelSerializable, opts.Isolation)
	})
}

func TestSleepBackoff_CapsAndCancels(t *testing.T) {
	opts := TxOptions{BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	start := time.Now()
	require.NoError(t, sleepBackoff(context.Background(), opts, 10))
	// Attempt 10 would shift far past the cap without clamping.
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepBackoff(ctx, TxOptions{BaseBackoff: time.Hour}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
