// Package app assembles the engine: one Postgres pool, one NATS connection,
// one watermill router per module, and the HTTP gateway in front.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/api"
	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/game"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/score"
	"github.com/Quiz-Night-Club/quiz-engine/app/modules/timer"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/app/storage"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// App owns every module of the engine and their shared infrastructure.
type App struct {
	Config   *config.Config
	Obs      *observability.Observability
	DB       *bun.DB
	EventBus eventbus.EventBus

	TimerModule      *timer.Module
	GameModule       *game.Module
	BuzzerModule     *buzzer.Module
	ScoreModule      *score.Module
	QuizImportModule *quizimport.Module

	APIServer *api.Server

	routers    []*message.Router
	cancelFunc context.CancelFunc
}

// NewApp wires the full engine from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(ctx, observability.Config{
		ServiceName:    "quiz-engine",
		Environment:    cfg.Observability.Environment,
		Version:        "dev",
		MetricsAddress: cfg.Observability.MetricsAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	db, err := storage.NewDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:      cfg.NATS.URL,
		NKeySeed: cfg.NATS.NKeySeed,
	}, obs.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	helpers := utils.NewHelpers()
	clock := randutil.RealClock{}
	watermillLogger := watermill.NewSlogLogger(obs.Logger)

	app := &App{
		Config:   cfg,
		Obs:      obs,
		DB:       db,
		EventBus: bus,
	}

	newRouter := func() (*message.Router, error) {
		router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
		if err != nil {
			return nil, err
		}
		app.routers = append(app.routers, router)
		return router, nil
	}

	timerRouter, err := newRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create timer router: %w", err)
	}
	app.TimerModule, err = timer.NewTimerModule(ctx, cfg, obs, db, bus, timerRouter, helpers, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create timer module: %w", err)
	}

	gameRouter, err := newRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create game router: %w", err)
	}
	app.GameModule, err = game.NewGameModule(ctx, cfg, obs, db, bus, gameRouter, helpers, clock, app.TimerModule.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to create game module: %w", err)
	}

	buzzerRouter, err := newRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create buzzer router: %w", err)
	}
	app.BuzzerModule, err = buzzer.NewBuzzerModule(ctx, cfg, obs, db, bus, buzzerRouter, helpers, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create buzzer module: %w", err)
	}

	scoreRouter, err := newRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create score router: %w", err)
	}
	app.ScoreModule, err = score.NewScoreModule(ctx, cfg, obs, db, bus, scoreRouter, helpers)
	if err != nil {
		return nil, fmt.Errorf("failed to create score module: %w", err)
	}

	importRouter, err := newRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create quizimport router: %w", err)
	}
	app.QuizImportModule, err = quizimport.NewQuizImportModule(ctx, cfg, obs, db, bus, importRouter, helpers)
	if err != nil {
		return nil, fmt.Errorf("failed to create quizimport module: %w", err)
	}

	app.APIServer = api.NewServer(
		cfg,
		obs.Logger,
		app.GameModule.GameService,
		app.BuzzerModule.BuzzerService,
		app.ScoreModule.ScoreService,
		app.QuizImportModule.ImportService,
	)

	return app, nil
}

// Run blocks until ctx is canceled, running every router, module and the
// HTTP gateway.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancelFunc = cancel
	defer cancel()

	var wg sync.WaitGroup

	for _, router := range a.routers {
		wg.Add(1)
		go func(router *message.Router) {
			defer wg.Done()
			if err := router.Run(ctx); err != nil {
				a.Obs.Logger.ErrorContext(ctx, "Router stopped", attr.Error(err))
				cancel()
			}
		}(router)
	}

	wg.Add(1)
	go a.TimerModule.Run(ctx, &wg)
	wg.Add(1)
	go a.GameModule.Run(ctx, &wg)
	wg.Add(1)
	go a.BuzzerModule.Run(ctx, &wg)
	wg.Add(1)
	go a.ScoreModule.Run(ctx, &wg)
	wg.Add(1)
	go a.QuizImportModule.Run(ctx, &wg)

	err := a.APIServer.Start(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close tears the engine down in reverse dependency order.
func (a *App) Close(ctx context.Context) error {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}

	a.QuizImportModule.Close()
	a.ScoreModule.Close()
	a.BuzzerModule.Close()
	a.GameModule.Close()
	a.TimerModule.Close()

	for _, router := range a.routers {
		if err := router.Close(); err != nil {
			a.Obs.Logger.Error("Failed to close router", attr.Error(err))
		}
	}

	if a.EventBus != nil {
		if closer, ok := a.EventBus.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				a.Obs.Logger.Error("Failed to close event bus", attr.Error(err))
			}
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Obs.Logger.Error("Failed to close database", attr.Error(err))
		}
	}

	return a.Obs.Close(ctx)
}
