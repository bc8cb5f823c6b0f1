package score

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	scoreservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/application"
	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
	scorerouter "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/router"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Module is the score ledger module.
type Module struct {
	EventBus     eventbus.EventBus
	ScoreService scoreservice.Service
	ScoreRouter  *scorerouter.ScoreRouter
	Repo         scoredb.Repository
	logger       *observability.Observability
	cancelFunc   context.CancelFunc
}

// NewScoreModule wires the ledger repository, service and router.
func NewScoreModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
) (*Module, error) {
	repo := &scoredb.LedgerDBImpl{DB: db}
	opMetrics := observability.NewOperationMetrics(obs.Registry, "score")
	txOpts := storage.TxOptionsFromConfig(cfg)

	scoreService := scoreservice.NewScoreService(repo, eventBus, obs.Logger, opMetrics, obs.Tracer, db, txOpts)

	scoreRouter := scorerouter.NewScoreRouter(obs.Logger, router, eventBus, eventBus, cfg, helpers, obs.Tracer, obs.Registry)
	if err := scoreRouter.Configure(ctx, scoreService, opMetrics); err != nil {
		return nil, fmt.Errorf("failed to configure score router: %w", err)
	}

	return &Module{
		EventBus:     eventBus,
		ScoreService: scoreService,
		ScoreRouter:  scoreRouter,
		Repo:         repo,
		logger:       obs,
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
