// Package schedule registers alarms with the durable timer service after
// checking the exact-timer capability.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/metrics"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/timer"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// Gate reports the current capability grants.
type Gate interface {
	Query(ctx context.Context) permission.State
}

// Timers is the durable timer service.
type Timers interface {
	Register(ctx context.Context, r timer.Registration) error
	Unregister(ctx context.Context, id int) (bool, error)
	Pending(ctx context.Context) ([]timer.Registration, error)
}

// Scheduler validates alarms, checks the exact-timer grant and hands them to
// the durable timer service.
type Scheduler struct {
	gate    Gate
	timers  Timers
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a Scheduler. m may be nil.
func New(gate Gate, timers Timers, l logger.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{gate: gate, timers: timers, log: l, metrics: m, now: time.Now}
}

// Schedule registers a. A pending registration with the same id is
// replaced. A trigger time in the past fires as soon as possible. Ids from
// alarm.SnoozeAlarmOffset up belong to snooze follow-ups and are rejected.
func (s *Scheduler) Schedule(ctx context.Context, a alarm.Alarm) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID >= alarm.SnoozeAlarmOffset {
		return fmt.Errorf("%w: alarm id must be below %d", alarm.ErrInvalidRequest, alarm.SnoozeAlarmOffset)
	}
	return s.register(ctx, a)
}

func (s *Scheduler) register(ctx context.Context, a alarm.Alarm) error {
	st := s.gate.Query(ctx)
	if !st.ExactTimerGranted {
		return fmt.Errorf("%w: exact alarms are not allowed", alarm.ErrPermissionDenied)
	}
	if !st.PowerExemptionGranted {
		s.log.Warning("alarm %d: power exemption missing, delivery may be late", a.ID)
	}
	if err := s.timers.Register(ctx, timer.FromAlarm(a)); err != nil {
		return err
	}
	s.metrics.Scheduled()
	s.log.Info("scheduled %s", a)
	return nil
}

// Cancel removes id and its snooze follow-up. It reports whether anything
// was pending; cancelling an unknown id is not an error.
func (s *Scheduler) Cancel(ctx context.Context, id int) (bool, error) {
	var (
		cancelled bool
		errs      []error
	)
	for _, target := range []int{id, alarm.SnoozeAlarmID(id)} {
		ok, err := s.timers.Unregister(ctx, target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cancelled = cancelled || ok
	}
	if cancelled {
		s.metrics.Cancelled()
		s.log.Info("cancelled alarm %d", id)
	}
	return cancelled, errors.Join(errs...)
}

// ScheduleRepeating registers the next hour:minute occurrence of a. The
// registration re-arms itself for the following day each time it fires.
func (s *Scheduler) ScheduleRepeating(ctx context.Context, a alarm.Alarm, hour, minute int) (alarm.Alarm, error) {
	if hour < 0 || hour > 23 {
		return alarm.Alarm{}, fmt.Errorf("%w: hour must be 0..23, got %d", alarm.ErrInvalidRequest, hour)
	}
	if minute < 0 || minute > 59 {
		return alarm.Alarm{}, fmt.Errorf("%w: minute must be 0..59, got %d", alarm.ErrInvalidRequest, minute)
	}
	a.Repeat = &alarm.Daily{Hour: hour, Minute: minute}
	a.TriggerAt = alarm.Millis(alarm.NextDaily(s.now(), hour, minute))
	if err := s.Schedule(ctx, a); err != nil {
		return alarm.Alarm{}, err
	}
	return a, nil
}

// Snooze registers the follow-up of a ringing alarm five minutes after now.
func (s *Scheduler) Snooze(ctx context.Context, a alarm.Alarm, now time.Time) (alarm.Alarm, error) {
	next := alarm.Snoozed(a, now)
	if err := next.Validate(); err != nil {
		return alarm.Alarm{}, fmt.Errorf("%w: %w", alarm.ErrRescheduleFailed, err)
	}
	if err := s.register(ctx, next); err != nil {
		return alarm.Alarm{}, fmt.Errorf("%w: %w", alarm.ErrRescheduleFailed, err)
	}
	return next, nil
}

// Pending lists the registered alarms in trigger order.
func (s *Scheduler) Pending(ctx context.Context) ([]alarm.Alarm, error) {
	regs, err := s.timers.Pending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]alarm.Alarm, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.Alarm)
	}
	return out, nil
}
