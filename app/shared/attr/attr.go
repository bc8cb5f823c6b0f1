// Package attr provides slog attribute helpers so log call sites stay terse
// and attribute keys stay consistent across modules.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Error(err error) slog.Attr { return slog.Any("error", err) }

func GameID(key string, id types.GameID) slog.Attr { return slog.String(key, id.String()) }

func RoundID(key string, id types.RoundID) slog.Attr { return slog.String(key, id.String()) }

func QuestionID(key string, id types.QuestionID) slog.Attr { return slog.String(key, id.String()) }

func TeamID(key string, id types.TeamID) slog.Attr { return slog.String(key, id.String()) }

func PlayerID(key string, id types.PlayerID) slog.Attr { return slog.String(key, id.String()) }

func Score(key string, s types.Score) slog.Attr { return slog.Int(key, int(s)) }

// ExtractCorrelationID pulls the correlation id planted in the context by the
// router middleware; empty string when absent.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", utils.CorrelationIDFromContext(ctx))
}
