package alarm

import "time"

// Offsets reserving disjoint id ranges per derived purpose. These values are
// part of the wire contract with front ends and must not change.
const (
	DismissActionOffset = 1000
	SnoozeActionOffset  = 2000
	SnoozeAlarmOffset   = 10000
)

// SnoozeDelay is how far a snooze pushes the alarm.
const SnoozeDelay = 5 * time.Minute

// DismissActionID returns the action id bound to the dismiss button of id.
func DismissActionID(id int) int { return id + DismissActionOffset }

// SnoozeActionID returns the action id bound to the snooze button of id.
func SnoozeActionID(id int) int { return id + SnoozeActionOffset }

// SnoozeAlarmID returns the id of the alarm a snooze of id produces.
func SnoozeAlarmID(id int) int { return id + SnoozeAlarmOffset }

// Family lists every id derived from base, base included.
func Family(base int) []int {
	return []int{base, DismissActionID(base), SnoozeActionID(base), SnoozeAlarmID(base)}
}

// Snoozed derives the alarm that a snooze of a rings at now+SnoozeDelay.
// Snoozing an already snoozed alarm reuses the same derived id so that
// cancelling the base id always reaches it.
func Snoozed(a Alarm, now time.Time) Alarm {
	base := a.BaseID()
	return Alarm{
		ID:        SnoozeAlarmID(base),
		Title:     a.Title,
		Body:      a.Body,
		Type:      TypeGeneric,
		TriggerAt: Millis(now.Add(SnoozeDelay)),
		OriginID:  &base,
	}
}

// NextDaily returns the next wall-clock time at hour:minute strictly after now,
// with seconds and sub-seconds zeroed. DST gaps are resolved by time.Date.
func NextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}
