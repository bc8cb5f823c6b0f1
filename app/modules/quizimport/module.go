package quizimport

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
	quizimportservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/application"
	quizimportrouter "github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/infrastructure/router"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/parsers"
	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Module is the question-set import module.
type Module struct {
	EventBus         eventbus.EventBus
	ImportService    quizimportservice.Service
	QuizImportRouter *quizimportrouter.QuizImportRouter
	logger           *observability.Observability
	cancelFunc       context.CancelFunc
}

// NewQuizImportModule wires the parser factory, repositories, service and
// router.
func NewQuizImportModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
) (*Module, error) {
	gameRepo := &gamedb.GameDBImpl{DB: db}
	roundRepo := &rounddb.RoundDBImpl{DB: db}
	opMetrics := observability.NewOperationMetrics(obs.Registry, "quizimport")
	txOpts := storage.TxOptionsFromConfig(cfg)

	importService := quizimportservice.NewImportService(
		gameRepo, roundRepo, parsers.NewFactory(), eventBus,
		obs.Logger, opMetrics, obs.Tracer, db, txOpts,
	)

	importRouter := quizimportrouter.NewQuizImportRouter(obs.Logger, router, eventBus, eventBus, cfg, helpers, obs.Tracer, obs.Registry)
	if err := importRouter.Configure(ctx, importService, opMetrics); err != nil {
		return nil, fmt.Errorf("failed to configure quizimport router: %w", err)
	}

	return &Module{
		EventBus:         eventBus,
		ImportService:    importService,
		QuizImportRouter: importRouter,
		logger:           obs,
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
