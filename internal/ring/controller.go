// Package ring runs the ringing session of a fired alarm: wake hold,
// notification, looping sound and vibration, torn down by dismiss or snooze.
package ring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/metrics"
	"github.com/warpdl/warpalarm/internal/notify"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/power"
	"github.com/warpdl/warpalarm/internal/sound"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const (
	DefaultWakeTimeout   = 10 * time.Minute
	DefaultUIWakeTimeout = 5 * time.Minute

	actionBudget = 10 * time.Second
	anyAlarm     = -1
)

// ErrNoChannel is returned by Start when neither notification, sound nor
// vibration could start.
var ErrNoChannel = errors.New("no ringing channel could start")

// Reasons carried by EventStopped.
const (
	ReasonDismissed = "dismissed"
	ReasonSnoozed   = "snoozed"
	ReasonReplaced  = "replaced"
	ReasonShutdown  = "shutdown"
)

// Event kinds.
const (
	EventStarted = "started"
	EventStopped = "stopped"
)

// Event is published to subscribers on every session transition.
type Event struct {
	Kind   string
	Reason string
	Status Status
}

// SoundSource yields the WAV data to ring with.
type SoundSource interface {
	Resolve() ([]byte, string, error)
}

// Rescheduler registers the alarm a snooze produces.
type Rescheduler interface {
	Snooze(ctx context.Context, a alarm.Alarm, now time.Time) (alarm.Alarm, error)
}

type Options struct {
	Capabilities permission.Capabilities
	Inhibitor    power.Inhibitor
	Surface      notify.Surface
	Sounds       SoundSource
	Player       sound.Player
	Vibrator     Vibrator
	Rescheduler  Rescheduler
	Metrics      *metrics.Metrics

	WakeTimeout   time.Duration
	UIWakeTimeout time.Duration
	Now           func() time.Time
}

// Controller enforces a single ringing session per process.
type Controller struct {
	opt Options
	log logger.Logger

	mu      sync.Mutex
	session *Session
	uiHold  *power.Lock

	subMu sync.RWMutex
	subs  []func(Event)
}

func NewController(opt Options, l logger.Logger) *Controller {
	if opt.WakeTimeout <= 0 {
		opt.WakeTimeout = DefaultWakeTimeout
	}
	if opt.UIWakeTimeout <= 0 {
		opt.UIWakeTimeout = DefaultUIWakeTimeout
	}
	if opt.Inhibitor == nil {
		opt.Inhibitor = power.NopInhibitor{}
	}
	if opt.Vibrator == nil {
		opt.Vibrator = NoVibrator{}
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Controller{opt: opt, log: l}
}

// Subscribe registers fn for session events. fn must not block.
func (c *Controller) Subscribe(fn func(Event)) {
	c.subMu.Lock()
	c.subs = append(c.subs, fn)
	c.subMu.Unlock()
}

func (c *Controller) emit(events []Event) {
	c.subMu.RLock()
	subs := c.subs
	c.subMu.RUnlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Start rings a. An active session is torn down first. The returned error
// wraps alarm.ErrDeliveryDegraded when the session is ringing with some
// channel missing, and ErrNoChannel when nothing could start; only in the
// latter case is the controller left idle.
func (c *Controller) Start(ctx context.Context, a alarm.Alarm) error {
	c.mu.Lock()
	var events []Event
	if c.session != nil {
		c.log.Info("alarm %d replaces ringing alarm %d", a.ID, c.session.Alarm.ID)
		events = append(events, c.teardownLocked(ctx, ReasonReplaced))
	}
	s, err := c.open(ctx, a)
	if s != nil {
		c.session = s
		c.opt.Metrics.SessionActive(true)
		events = append(events, Event{Kind: EventStarted, Status: s.status()})
		c.log.Info("%s ringing (session %s)", a, s.ID)
	}
	c.mu.Unlock()
	c.emit(events)
	return err
}

func (c *Controller) open(ctx context.Context, a alarm.Alarm) (*Session, error) {
	now := c.opt.Now()
	s := &Session{ID: uuid.NewString(), Alarm: a, StartedAt: now}
	var errs []error

	lock, err := power.Acquire(c.opt.Inhibitor, fmt.Sprintf("alarm %d ringing", a.ID), c.opt.WakeTimeout, c.log)
	if err != nil {
		c.log.Warning("alarm %d: wake hold: %v", a.ID, err)
		errs = append(errs, fmt.Errorf("wake hold: %w", err))
	}
	s.wake = lock

	if c.opt.Surface == nil {
		errs = append(errs, errors.New("notification: no surface"))
	} else if err := c.opt.Surface.Show(ctx, notify.Build(a, now)); err != nil {
		c.log.Error("alarm %d: notification: %v", a.ID, err)
		errs = append(errs, fmt.Errorf("notification: %w", err))
	} else {
		s.notified = true
	}

	if pb, err := c.startSound(); err != nil {
		c.log.Warning("alarm %d: ringing without sound: %v", a.ID, err)
		errs = append(errs, fmt.Errorf("sound: %w", err))
	} else {
		s.playback = pb
	}

	if c.opt.Capabilities.Vibration {
		stop, err := c.opt.Vibrator.Vibrate(Pattern)
		if err != nil {
			c.log.Warning("alarm %d: ringing without vibration: %v", a.ID, err)
			errs = append(errs, fmt.Errorf("vibration: %w", err))
		} else {
			s.stopVibes = stop
		}
	}

	if !s.notified && s.playback == nil && s.stopVibes == nil {
		s.release(ctx, c.opt.Surface, c.log)
		return nil, fmt.Errorf("%w: %w", ErrNoChannel, errors.Join(errs...))
	}
	if len(errs) > 0 {
		s.Degraded = true
		return s, fmt.Errorf("%w: %w", alarm.ErrDeliveryDegraded, errors.Join(errs...))
	}
	return s, nil
}

func (c *Controller) startSound() (sound.Playback, error) {
	if !c.opt.Capabilities.Sound || c.opt.Player == nil || c.opt.Sounds == nil {
		return nil, errors.New("no audio output")
	}
	data, path, err := c.opt.Sounds.Resolve()
	if err != nil {
		return nil, err
	}
	pb, err := c.opt.Player.Play(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pb, nil
}

func (c *Controller) teardownLocked(ctx context.Context, reason string) Event {
	s := c.session
	st := s.status()
	s.release(ctx, c.opt.Surface, c.log)
	if c.uiHold != nil {
		c.uiHold.Release()
		c.uiHold = nil
	}
	c.session = nil
	c.opt.Metrics.SessionActive(false)
	c.log.Info("alarm %d %s (session %s)", s.Alarm.ID, reason, s.ID)
	return Event{Kind: EventStopped, Reason: reason, Status: st}
}

// stop tears down the session if it rings alarm id (anyAlarm matches all).
func (c *Controller) stop(ctx context.Context, id int, reason string) (*Session, bool) {
	c.mu.Lock()
	s := c.session
	if s == nil || (id != anyAlarm && s.Alarm.ID != id) {
		c.mu.Unlock()
		return nil, false
	}
	ev := c.teardownLocked(ctx, reason)
	c.mu.Unlock()
	c.emit([]Event{ev})
	return s, true
}

// Dismiss stops the active session. It reports whether one was ringing and
// is a no-op otherwise.
func (c *Controller) Dismiss(ctx context.Context) bool {
	_, ok := c.stop(ctx, anyAlarm, ReasonDismissed)
	return ok
}

// Snooze stops the active session and registers its snoozed follow-up.
// Teardown always completes; a failed registration is returned wrapped in
// alarm.ErrRescheduleFailed. With no active session it returns a zero Alarm.
func (c *Controller) Snooze(ctx context.Context) (alarm.Alarm, error) {
	return c.snooze(ctx, anyAlarm)
}

func (c *Controller) snooze(ctx context.Context, id int) (alarm.Alarm, error) {
	s, ok := c.stop(ctx, id, ReasonSnoozed)
	if !ok {
		return alarm.Alarm{}, nil
	}
	c.opt.Metrics.Snoozed()
	var (
		next alarm.Alarm
		err  = errors.New("no scheduler")
	)
	if c.opt.Rescheduler != nil {
		next, err = c.opt.Rescheduler.Snooze(ctx, s.Alarm, c.opt.Now())
	}
	if err != nil {
		c.opt.Metrics.RescheduleFailed()
		if !errors.Is(err, alarm.ErrRescheduleFailed) {
			err = fmt.Errorf("%w: %w", alarm.ErrRescheduleFailed, err)
		}
		c.log.Error("alarm %d: snooze: %v", s.Alarm.ID, err)
		return alarm.Alarm{}, err
	}
	c.log.Info("alarm %d snoozed until %s as %d", s.Alarm.ID, next.Time().Format(time.Kitchen), next.ID)
	return next, nil
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Status{State: StateIdle}
	}
	return c.session.status()
}

// HoldUI takes the shorter wake hold used while the detail view is open.
// It is released with the session.
func (c *Controller) HoldUI() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return errors.New("no alarm is ringing")
	}
	if c.uiHold != nil {
		return nil
	}
	lock, err := power.Acquire(c.opt.Inhibitor, "alarm detail open", c.opt.UIWakeTimeout, c.log)
	if err != nil {
		return err
	}
	c.uiHold = lock
	return nil
}

// HandleAction routes a notification tap. Taps for an alarm that is no
// longer ringing are ignored.
func (c *Controller) HandleAction(action string, alarmID int) {
	ctx, cancel := context.WithTimeout(context.Background(), actionBudget)
	defer cancel()
	switch action {
	case notify.ActionDismiss:
		if _, ok := c.stop(ctx, alarmID, ReasonDismissed); !ok {
			c.log.Info("dismiss for alarm %d ignored: not ringing", alarmID)
		}
	case notify.ActionSnooze:
		_, _ = c.snooze(ctx, alarmID)
	case notify.ActionOpen:
		if err := c.HoldUI(); err != nil {
			c.log.Info("open alarm %d: %v", alarmID, err)
		}
	default:
		c.log.Warning("unknown notification action %q", action)
	}
}

// Close tears down any active session.
func (c *Controller) Close(ctx context.Context) {
	c.stop(ctx, anyAlarm, ReasonShutdown)
}
