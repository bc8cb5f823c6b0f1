package timerservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// StartTimer runs the game's timer, resuming banked time when the timer was
// stopped. For countdowns a watchdog job is planted at the deadline so the
// end fires even if every client goes away.
func (s *TimerService) StartTimer(ctx context.Context, payload events.TimerStartRequestedPayloadV1) (results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "StartTimer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
			var (
				deadline    time.Time
				hasDeadline bool
				endSeq      int64
			)

			result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
				timer, err := s.repo.GetTimer(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				now := s.clock.Now()
				if err := timer.Start(now, payload.DurationSeconds, payload.Forward, payload.ManagedBy); err != nil {
					if gameerr.IsInvalidTransition(err) {
						return results.Fail[events.TimerStartedPayloadV1](events.TimerCommandFailedPayloadV1{
							GameID:  payload.GameID,
							Command: "StartTimer",
							Reason:  err.Error(),
						}), nil
					}
					return results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				if err := s.repo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				deadline, hasDeadline = timer.Deadline()
				endSeq = timer.EndSeq

				return results.Succeed[events.TimerStartedPayloadV1, events.TimerCommandFailedPayloadV1](events.TimerStartedPayloadV1{
					GameID:          payload.GameID,
					DurationSeconds: timer.DurationSeconds,
					Forward:         timer.Forward,
					StartedAtUnix:   now.Unix(),
				}), nil
			})
			if err != nil || result.IsFailure() {
				return result, err
			}

			if hasDeadline && s.scheduler != nil {
				if err := s.scheduler.ScheduleTimerEnd(ctx, payload.GameID, endSeq, deadline); err != nil {
					s.logger.ErrorContext(ctx, "Failed to schedule timer end watchdog",
						attr.GameID("game_id", payload.GameID),
						attr.Error(err),
					)
				}
			}
			return result, nil
		})
}

// StopTimer pauses a running timer.
func (s *TimerService) StopTimer(ctx context.Context, payload events.TimerStopRequestedPayloadV1) (results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "StopTimer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1], error) {
				timer, err := s.repo.GetTimer(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				if err := timer.Stop(s.clock.Now()); err != nil {
					if gameerr.IsInvalidTransition(err) {
						return results.Fail[events.TimerStoppedPayloadV1](events.TimerCommandFailedPayloadV1{
							GameID:  payload.GameID,
							Command: "StopTimer",
							Reason:  err.Error(),
						}), nil
					}
					return results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				if err := s.repo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.TimerStoppedPayloadV1, events.TimerCommandFailedPayloadV1](events.TimerStoppedPayloadV1{
					GameID: payload.GameID,
				}), nil
			})
		})
}

// ResetTimer re-arms the timer from any state.
func (s *TimerService) ResetTimer(ctx context.Context, payload events.TimerResetRequestedPayloadV1) (results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1], error) {
	return withTelemetry(s, ctx, "ResetTimer", payload.GameID,
		func(ctx context.Context) (results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1], error) {
				timer, err := s.repo.GetTimer(ctx, db, payload.GameID)
				if err != nil {
					return results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				timer.Reset(payload.DurationSeconds)

				if err := s.repo.SaveTimer(ctx, db, timer); err != nil {
					return results.OperationResult[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1]{}, err
				}

				return results.Succeed[events.TimerResetPayloadV1, events.TimerCommandFailedPayloadV1](events.TimerResetPayloadV1{
					GameID:          payload.GameID,
					DurationSeconds: timer.DurationSeconds,
				}), nil
			})
		})
}

// HandleTimerEnd fires the natural end carried by endSeq. It reports whether
// this call won the latch; losing is normal (the timer was stopped, reset or
// restarted since the watchdog was planted).
func (s *TimerService) HandleTimerEnd(ctx context.Context, gameID types.GameID, endSeq int64) (bool, error) {
	type endResult struct{ Fired bool }

	result, err := withTelemetry(s, ctx, "HandleTimerEnd", gameID,
		func(ctx context.Context) (results.OperationResult[endResult, events.TimerCommandFailedPayloadV1], error) {
			return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[endResult, events.TimerCommandFailedPayloadV1], error) {
				timer, err := s.repo.GetTimer(ctx, db, gameID)
				if err != nil {
					return results.OperationResult[endResult, events.TimerCommandFailedPayloadV1]{}, err
				}

				fired := timer.End(endSeq)
				if fired {
					if err := s.repo.SaveTimer(ctx, db, timer); err != nil {
						return results.OperationResult[endResult, events.TimerCommandFailedPayloadV1]{}, err
					}
				}

				return results.Succeed[endResult, events.TimerCommandFailedPayloadV1](endResult{Fired: fired}), nil
			})
		})
	if err != nil {
		return false, err
	}
	return result.Success != nil && result.Success.Fired, nil
}
