package buzzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	buzzerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer/application"
	buzzerrouter "github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer/infrastructure/router"
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Module is the buzzer race module. It shares the question state storage with
// the round module so presses and answers see one consistent record.
type Module struct {
	EventBus      eventbus.EventBus
	BuzzerService buzzerservice.Service
	BuzzerRouter  *buzzerrouter.BuzzerRouter
	Repo          rounddb.Repository
	logger        *observability.Observability
	cancelFunc    context.CancelFunc
}

// NewBuzzerModule wires the question state repository, service and router.
func NewBuzzerModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	clock randutil.Clock,
) (*Module, error) {
	repo := &rounddb.RoundDBImpl{DB: db}
	gameRepo := &gamedb.GameDBImpl{DB: db}
	opMetrics := observability.NewOperationMetrics(obs.Registry, "buzzer")
	txOpts := storage.TxOptionsFromConfig(cfg)

	buzzerService := buzzerservice.NewBuzzerService(repo, gameRepo, eventBus, obs.Logger, opMetrics, obs.Tracer, db, txOpts, clock)

	buzzerRouter := buzzerrouter.NewBuzzerRouter(obs.Logger, router, eventBus, eventBus, cfg, helpers, obs.Tracer, obs.Registry)
	if err := buzzerRouter.Configure(ctx, buzzerService, opMetrics); err != nil {
		return nil, fmt.Errorf("failed to configure buzzer router: %w", err)
	}

	return &Module{
		EventBus:      eventBus,
		BuzzerService: buzzerService,
		BuzzerRouter:  buzzerRouter,
		Repo:          repo,
		logger:        obs,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
