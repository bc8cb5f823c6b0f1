package timer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	timerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/application"
	timerqueue "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/queue"
	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
	timerrouter "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/router"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Module is the timer module: the shared countdown plus its watchdog queue.
type Module struct {
	EventBus     eventbus.EventBus
	TimerService timerservice.Service
	TimerRouter  *timerrouter.TimerRouter
	Queue        *timerqueue.Service
	Repo         timerdb.Repository
	cancelFunc   context.CancelFunc
}

// NewTimerModule wires the timer repository, service, watchdog queue and
// router.
func NewTimerModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	clock randutil.Clock,
) (*Module, error) {
	repo := &timerdb.TimerDBImpl{DB: db}
	opMetrics := observability.NewOperationMetrics(obs.Registry, "timer")
	txOpts := storage.TxOptionsFromConfig(cfg)

	svc := timerservice.NewTimerService(repo, eventBus, obs.Logger, opMetrics, obs.Tracer, db, txOpts, clock)

	queue, err := timerqueue.NewService(ctx, db, obs.Logger, cfg.Postgres.DSN, eventBus, helpers, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to create timer queue: %w", err)
	}
	svc.SetScheduler(queue)

	timerRouter := timerrouter.NewTimerRouter(obs.Logger, router, eventBus, eventBus, cfg, helpers, obs.Tracer, obs.Registry)
	if err := timerRouter.Configure(ctx, svc, opMetrics); err != nil {
		return nil, fmt.Errorf("failed to configure timer router: %w", err)
	}

	return &Module{
		EventBus:     eventBus,
		TimerService: svc,
		TimerRouter:  timerRouter,
		Queue:        queue,
		Repo:         repo,
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
