package ring

import (
	"context"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/notify"
	"github.com/warpdl/warpalarm/internal/power"
	"github.com/warpdl/warpalarm/internal/sound"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// State of the controller.
type State string

const (
	StateIdle    State = "idle"
	StateRinging State = "ringing"
)

// Session owns every resource of one ringing alarm. It is created by Start
// and destroyed by teardown; it is never reused.
type Session struct {
	ID        string
	Alarm     alarm.Alarm
	StartedAt time.Time
	Degraded  bool

	wake      *power.Lock
	notified  bool
	playback  sound.Playback
	stopVibes func()
}

// Status is a snapshot of the controller.
type Status struct {
	State     State
	SessionID string
	Alarm     *alarm.Alarm
	StartedAt time.Time
	Degraded  bool
}

func (s *Session) status() Status {
	a := s.Alarm
	return Status{
		State:     StateRinging,
		SessionID: s.ID,
		Alarm:     &a,
		StartedAt: s.StartedAt,
		Degraded:  s.Degraded,
	}
}

// release stops every channel and drops the wake hold. Each step runs even
// when an earlier one fails.
func (s *Session) release(ctx context.Context, surface notify.Surface, l logger.Logger) {
	if s.playback != nil {
		s.playback.Stop()
		s.playback = nil
	}
	if s.stopVibes != nil {
		s.stopVibes()
		s.stopVibes = nil
	}
	if s.notified && surface != nil {
		if err := surface.Withdraw(ctx, notify.Slot); err != nil {
			l.Warning("alarm %d: withdraw notification: %v", s.Alarm.ID, err)
		}
		s.notified = false
	}
	s.wake.Release()
	s.wake = nil
}
