package timerqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	timerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/application"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
)

// TimerEndWorker fires natural timer ends. Publishing TimerEndedV1 is gated
// on the service latch, so a run produces at most one event no matter how
// many watchdogs race.
type TimerEndWorker struct {
	river.WorkerDefaults[TimerEndJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
	helpers  utils.Helpers
	service  timerservice.Service
}

// NewTimerEndWorker creates the watchdog worker.
func NewTimerEndWorker(logger *slog.Logger, eventBus eventbus.EventBus, helpers utils.Helpers, service timerservice.Service) *TimerEndWorker {
	return &TimerEndWorker{
		logger:   logger,
		eventBus: eventBus,
		helpers:  helpers,
		service:  service,
	}
}

func (w *TimerEndWorker) Work(ctx context.Context, job *river.Job[TimerEndJob]) error {
	gameID, err := types.ParseGameID(job.Args.GameID)
	if err != nil {
		return fmt.Errorf("invalid game id in timer end job: %w", err)
	}

	fired, err := w.service.HandleTimerEnd(ctx, gameID, job.Args.EndSeq)
	if err != nil {
		return fmt.Errorf("failed to handle timer end: %w", err)
	}
	if !fired {
		w.logger.DebugContext(ctx, "Timer end watchdog lost the latch",
			attr.GameID("game_id", gameID),
			attr.Int("end_seq", int(job.Args.EndSeq)),
		)
		return nil
	}

	msg, err := w.helpers.CreateResultMessage(nil, events.TimerEndedPayloadV1{
		GameID: gameID,
		EndSeq: job.Args.EndSeq,
	}, events.TimerEndedV1)
	if err != nil {
		return fmt.Errorf("failed to create timer ended message: %w", err)
	}

	if err := w.eventBus.Publish(events.TimerEndedV1, msg); err != nil {
		return fmt.Errorf("failed to publish timer ended event: %w", err)
	}

	w.logger.InfoContext(ctx, "Timer ended naturally",
		attr.GameID("game_id", gameID),
		attr.Int("end_seq", int(job.Args.EndSeq)),
	)
	return nil
}
