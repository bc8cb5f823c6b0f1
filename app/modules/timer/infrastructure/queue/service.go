package timerqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	timerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/application"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
)

// Service schedules timer watchdog jobs with River.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
	db     *bun.DB
}

var _ timerservice.Scheduler = (*Service)(nil)

// NewService creates the River-backed watchdog queue. River needs its own
// pgx pool; bun's database/sql pool cannot drive it.
func NewService(
	ctx context.Context,
	bunDB *bun.DB,
	logger *slog.Logger,
	dsn string,
	eventBus eventbus.EventBus,
	helpers utils.Helpers,
	timerSvc timerservice.Service,
) (*Service, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewTimerEndWorker(logger, eventBus, helpers, timerSvc))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"timer":            {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{
		client: riverClient,
		pool:   pool,
		logger: logger,
		db:     bunDB,
	}, nil
}

// Start starts the queue workers.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop drains and stops the queue workers.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	return nil
}

// ScheduleTimerEnd plants the watchdog for one countdown run. ByArgs
// uniqueness makes rescheduling the same run a no-op.
func (s *Service) ScheduleTimerEnd(ctx context.Context, gameID types.GameID, endSeq int64, at time.Time) error {
	job := TimerEndJob{GameID: gameID.String(), EndSeq: endSeq}

	result, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue:       "timer",
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to schedule timer end job: %w", err)
	}

	s.logger.InfoContext(ctx, "Timer end watchdog scheduled",
		attr.GameID("game_id", gameID),
		attr.Int("end_seq", int(endSeq)),
		attr.Any("job_id", result.Job.ID),
	)
	return nil
}

// HealthCheck verifies the queue can reach its table.
func (s *Service) HealthCheck(ctx context.Context) error {
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}
