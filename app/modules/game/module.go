package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	gameservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/application"
	gamequeue "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/queue"
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	gamerouter "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/router"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/round/policies"
	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
	timerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/application"
	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Module is the game orchestrator: the state machine, the policy registry
// and the start queue, with direct repository access to the round, score and
// timer storage so one transaction covers a whole command.
type Module struct {
	EventBus    eventbus.EventBus
	GameService gameservice.Service
	GameRouter  *gamerouter.GameRouter
	Queue       *gamequeue.Service
	Repo        gamedb.Repository
	cancelFunc  context.CancelFunc
}

// NewGameModule wires the repositories, policy registry, service, start
// queue and router. The timer watchdog scheduler comes from the timer
// module's queue.
func NewGameModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	clock randutil.Clock,
	timerScheduler timerservice.Scheduler,
) (*Module, error) {
	repo := &gamedb.GameDBImpl{DB: db}
	roundRepo := &rounddb.RoundDBImpl{DB: db}
	scoreRepo := &scoredb.LedgerDBImpl{DB: db}
	timerRepo := &timerdb.TimerDBImpl{DB: db}
	opMetrics := observability.NewOperationMetrics(obs.Registry, "game")
	txOpts := storage.TxOptionsFromConfig(cfg)

	svc := gameservice.NewGameService(
		repo, roundRepo, scoreRepo, timerRepo,
		policies.NewRegistry(),
		eventBus, obs.Logger, opMetrics, obs.Tracer,
		db, txOpts, clock, cfg,
	)
	if timerScheduler != nil {
		svc.SetTimerScheduler(timerScheduler)
	}

	queue, err := gamequeue.NewService(ctx, db, obs.Logger, cfg.Postgres.DSN, eventBus, helpers, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to create game queue: %w", err)
	}
	svc.SetStartScheduler(queue)

	gameRouter := gamerouter.NewGameRouter(obs.Logger, router, eventBus, eventBus, cfg, helpers, obs.Tracer, obs.Registry)
	if err := gameRouter.Configure(ctx, svc, opMetrics); err != nil {
		return nil, fmt.Errorf("failed to configure game router: %w", err)
	}

	return &Module{
		EventBus:    eventBus,
		GameService: svc,
		GameRouter:  gameRouter,
		Queue:       queue,
		Repo:        repo,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Queue.Start(ctx); err != nil {
		return
	}

	<-ctx.Done()
	stopCtx := context.Background()
	_ = m.Queue.Stop(stopCtx)
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
