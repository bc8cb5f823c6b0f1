package storage

import (
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// TxOptionsFromConfig builds retry options from the game config, falling back
// to the defaults for anything unset.
func TxOptionsFromConfig(cfg *config.Config) TxOptions {
	opts := DefaultTxOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Game.TxMaxAttempts > 0 {
		opts.MaxAttempts = cfg.Game.TxMaxAttempts
	}
	if cfg.Game.TxBaseBackoffMillis > 0 {
		opts.BaseBackoff = time.Duration(cfg.Game.TxBaseBackoffMillis) * time.Millisecond
	}
	if cfg.Game.TxMaxBackoffMillis > 0 {
		opts.MaxBackoff = time.Duration(cfg.Game.TxMaxBackoffMillis) * time.Millisecond
	}
	return opts
}
