// Package alarm holds the alarm data model shared by every lifecycle stage:
// the Alarm value, its closed family of derived ids, and the error taxonomy.
package alarm

import (
	"fmt"
	"strings"
	"time"
)

// Type is presentational only; it never changes delivery mechanics.
type Type string

const (
	TypeGeneric  Type = "generic"
	TypeMedicine Type = "medicine"
	TypeMeeting  Type = "meeting"
)

// ParseType maps a wire string to a Type. The empty string and "alarm"
// (the default used by older front ends) both mean generic.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alarm", string(TypeGeneric):
		return TypeGeneric, nil
	case string(TypeMedicine):
		return TypeMedicine, nil
	case string(TypeMeeting):
		return TypeMeeting, nil
	}
	return "", fmt.Errorf("%w: unknown alarm type %q", ErrInvalidRequest, s)
}

// Label is the title used when an alarm has none.
func (t Type) Label() string {
	switch t {
	case TypeMedicine:
		return "💊 Medicine Reminder"
	case TypeMeeting:
		return "📅 Meeting Reminder"
	default:
		return "⏰ Wake Up Alarm"
	}
}

// Daily marks an alarm created by a repeating schedule.
type Daily struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// CronExpr renders the occurrence as a five-field cron expression.
func (d Daily) CronExpr() string {
	return fmt.Sprintf("%d %d * * *", d.Minute, d.Hour)
}

func (d Daily) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Alarm is the unit of scheduling.
type Alarm struct {
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Type  Type   `json:"type"`
	// TriggerAt is milliseconds since the Unix epoch.
	TriggerAt int64 `json:"triggerAt"`
	// OriginID is set only on alarms produced by a snooze.
	OriginID *int `json:"originId,omitempty"`
	// Repeat is set on alarms created by a daily schedule.
	Repeat *Daily `json:"repeat,omitempty"`
}

// DisplayTitle returns Title, falling back to the type label.
func (a Alarm) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Type.Label()
}

// Time returns TriggerAt as a time.Time in the local zone.
func (a Alarm) Time() time.Time {
	return time.UnixMilli(a.TriggerAt)
}

// BaseID is the id that owns the derived family: the origin for snoozed
// alarms, the alarm's own id otherwise.
func (a Alarm) BaseID() int {
	if a.OriginID != nil {
		return *a.OriginID
	}
	return a.ID
}

// Validate checks the fields a registration cannot do without.
func (a Alarm) Validate() error {
	if a.ID < 0 {
		return fmt.Errorf("%w: Alarm ID is required", ErrInvalidRequest)
	}
	if a.TriggerAt <= 0 {
		return fmt.Errorf("%w: triggerAtMillis is required", ErrInvalidRequest)
	}
	switch a.Type {
	case TypeGeneric, TypeMedicine, TypeMeeting:
	default:
		return fmt.Errorf("%w: unknown alarm type %q", ErrInvalidRequest, a.Type)
	}
	return nil
}

func (a Alarm) String() string {
	return fmt.Sprintf("alarm %d (%s) at %s", a.ID, a.DisplayTitle(), a.Time().Format(time.RFC3339))
}

// Millis converts t to the TriggerAt representation.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
