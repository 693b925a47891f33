// Package notify builds alarm notifications and publishes them on the
// desktop notification surface.
package notify

import (
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
)

// Slot is the single notification slot every ringing session uses, so a new
// alarm's notification replaces a stale one instead of stacking.
const Slot = 9999

// Channel is the high-importance channel alarms are posted on.
const Channel = "ALARM_CHANNEL_HIGH"

// Action keys understood by the surface and the daemon.
const (
	ActionDismiss = "dismiss"
	ActionSnooze  = "snooze"
	ActionOpen    = "open"
)

// DefaultBody is shown by the fallback notification when an alarm has no body.
const DefaultBody = "Tap DISMISS to stop or SNOOZE to ring again"

const timeLayout = "03:04 PM"

// Action is one button on the notification.
type Action struct {
	Key   string
	Label string
	// TargetID is the id-derived target the action is bound to.
	TargetID int
}

// Spec is everything a surface needs to render an alarm notification.
type Spec struct {
	Slot    int
	AlarmID int
	Title   string
	Body    string
	Actions []Action
	// OpenTarget opens the full alarm detail view.
	OpenTarget   int
	Channel      string
	ShowOverLock bool
	Ongoing      bool
	Critical     bool
	// Emergency marks the degraded notification posted when ringing could not start.
	Emergency bool
}

// Build produces the ringing notification for a. It is a pure function of its inputs.
func Build(a alarm.Alarm, now time.Time) Spec {
	body := now.Format(timeLayout)
	if a.Body != "" {
		body += " • " + a.Body
	}
	return Spec{
		Slot:    Slot,
		AlarmID: a.ID,
		Title:   a.DisplayTitle(),
		Body:    body,
		Actions: []Action{
			{Key: ActionDismiss, Label: "DISMISS", TargetID: alarm.DismissActionID(a.ID)},
			{Key: ActionSnooze, Label: "SNOOZE", TargetID: alarm.SnoozeActionID(a.ID)},
		},
		OpenTarget:   a.ID,
		Channel:      Channel,
		ShowOverLock: true,
		Ongoing:      true,
		Critical:     true,
	}
}

// BuildFallback produces the plain notification used when no ringing session
// could start. It keeps the dismiss action so the user can still acknowledge.
func BuildFallback(a alarm.Alarm, now time.Time) Spec {
	body := a.Body
	if body == "" {
		body = DefaultBody
	}
	return Spec{
		Slot:    Slot,
		AlarmID: a.ID,
		Title:   a.DisplayTitle(),
		Body:    now.Format(timeLayout) + " • " + body,
		Actions: []Action{
			{Key: ActionDismiss, Label: "DISMISS", TargetID: alarm.DismissActionID(a.ID)},
		},
		OpenTarget:   a.ID,
		Channel:      Channel,
		ShowOverLock: true,
		Critical:     true,
		Emergency:    true,
	}
}
