// Package export renders pending alarms as an iCalendar document, one VEVENT
// with a VALARM per alarm.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"github.com/warpdl/warpalarm/internal/alarm"
)

const productID = "-//warpdl//warpalarm//EN"

// UID returns the stable calendar uid of an alarm id.
func UID(id int) string {
	return fmt.Sprintf("alarm-%d@warpalarm", id)
}

// Calendar builds the calendar for alarms. now stamps every event.
func Calendar(alarms []alarm.Alarm, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, a := range alarms {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, UID(a.ID))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeStart, a.Time().UTC())
		ev.Props.SetText(ical.PropSummary, a.DisplayTitle())
		if a.Body != "" {
			ev.Props.SetText(ical.PropDescription, a.Body)
		}
		ev.Props.SetText(ical.PropCategories, string(a.Type))
		if a.Repeat != nil {
			ev.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.DAILY})
		}

		va := ical.NewComponent(ical.CompAlarm)
		va.Props.SetText(ical.PropAction, "DISPLAY")
		va.Props.SetText(ical.PropDescription, a.DisplayTitle())
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0S"
		va.Props.Set(trigger)
		ev.Children = append(ev.Children, va)

		cal.Children = append(cal.Children, ev.Component)
	}
	return cal
}

// Write encodes the calendar for alarms to w.
func Write(w io.Writer, alarms []alarm.Alarm, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(Calendar(alarms, now)); err != nil {
		return fmt.Errorf("error: cannot encode calendar: %w", err)
	}
	return nil
}
