package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/warpdl/warpalarm/internal/alarm"
)

func TestWrite(t *testing.T) {
	at := time.Date(2026, 11, 2, 7, 30, 0, 0, time.UTC)
	alarms := []alarm.Alarm{
		{ID: 1, Title: "Wake up", Type: alarm.TypeGeneric, TriggerAt: alarm.Millis(at)},
		{ID: 2, Body: "with water", Type: alarm.TypeMedicine, TriggerAt: alarm.Millis(at.Add(time.Hour)), Repeat: &alarm.Daily{Hour: 8, Minute: 30}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, alarms, at.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "PRODID:" + productID, "UID:alarm-1@warpalarm", "BEGIN:VALARM", "RRULE:FREQ=DAILY"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	if err != nil {
		t.Fatal(err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	start, err := events[0].DateTimeStart(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(at) {
		t.Errorf("start = %v, want %v", start, at)
	}
	summary, _ := events[1].Props.Text(ical.PropSummary)
	if summary != "💊 Medicine Reminder" {
		t.Errorf("summary = %q", summary)
	}
	if n := len(events[1].Children); n != 1 || events[1].Children[0].Name != ical.CompAlarm {
		t.Errorf("alarm children = %+v", events[1].Children)
	}
}
