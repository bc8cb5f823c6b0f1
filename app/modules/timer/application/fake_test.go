package timerservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	timerdomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// FakeTimerRepository keeps timers in memory for service tests.
type FakeTimerRepository struct {
	timers map[types.GameID]*timerdomain.Timer
}

func NewFakeTimerRepository() *FakeTimerRepository {
	return &FakeTimerRepository{timers: map[types.GameID]*timerdomain.Timer{}}
}

func (f *FakeTimerRepository) CreateTimer(_ context.Context, _ bun.IDB, timer *timerdomain.Timer) error {
	cp := *timer
	f.timers[timer.GameID] = &cp
	return nil
}

func (f *FakeTimerRepository) GetTimer(_ context.Context, _ bun.IDB, gameID types.GameID) (*timerdomain.Timer, error) {
	timer, ok := f.timers[gameID]
	if !ok {
		return nil, &gameerr.NotFoundError{Kind: "timer", ID: gameID.String()}
	}
	cp := *timer
	return &cp, nil
}

func (f *FakeTimerRepository) SaveTimer(_ context.Context, _ bun.IDB, timer *timerdomain.Timer) error {
	cp := *timer
	f.timers[timer.GameID] = &cp
	return nil
}

// FakeScheduler records watchdogs instead of planting river jobs.
type FakeScheduler struct {
	Scheduled []ScheduledEnd
}

type ScheduledEnd struct {
	GameID types.GameID
	EndSeq int64
	At     time.Time
}

func (f *FakeScheduler) ScheduleTimerEnd(_ context.Context, gameID types.GameID, endSeq int64, at time.Time) error {
	f.Scheduled = append(f.Scheduled, ScheduledEnd{GameID: gameID, EndSeq: endSeq, At: at})
	return nil
}
