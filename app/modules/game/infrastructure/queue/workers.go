package gamequeue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	gameservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/application"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
)

// GameStartWorker opens a scheduled lobby. A game that was already opened or
// ended by hand fails the transition inside the service; the job then ends
// without publishing.
type GameStartWorker struct {
	river.WorkerDefaults[GameStartJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
	helpers  utils.Helpers
	service  gameservice.Service
}

// NewGameStartWorker creates the scheduled-start worker.
func NewGameStartWorker(logger *slog.Logger, eventBus eventbus.EventBus, helpers utils.Helpers, service gameservice.Service) *GameStartWorker {
	return &GameStartWorker{
		logger:   logger,
		eventBus: eventBus,
		helpers:  helpers,
		service:  service,
	}
}

func (w *GameStartWorker) Work(ctx context.Context, job *river.Job[GameStartJob]) error {
	gameID, err := types.ParseGameID(job.Args.GameID)
	if err != nil {
		return fmt.Errorf("invalid game id in game start job: %w", err)
	}

	result, err := w.service.OpenGame(ctx, events.GameOpenRequestedPayloadV1{GameID: gameID})
	if err != nil {
		return fmt.Errorf("failed to open scheduled game: %w", err)
	}
	if result.IsFailure() {
		w.logger.WarnContext(ctx, "Scheduled game start skipped",
			attr.GameID("game_id", gameID),
			attr.String("reason", result.Failure.Reason),
		)
		return nil
	}

	msg, err := w.helpers.CreateResultMessage(nil, *result.Success, events.GameOpenedV1)
	if err != nil {
		return fmt.Errorf("failed to create game opened message: %w", err)
	}

	if err := w.eventBus.Publish(events.GameOpenedV1, msg); err != nil {
		return fmt.Errorf("failed to publish game opened event: %w", err)
	}

	w.logger.InfoContext(ctx, "Scheduled game opened",
		attr.GameID("game_id", gameID),
	)
	return nil
}
