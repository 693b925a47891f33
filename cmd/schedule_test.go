package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/common"
)

func TestTriggerTime(t *testing.T) {
	ref := time.Date(2027, 3, 1, 8, 0, 0, 0, time.Local)
	got, err := triggerTime("2027-03-02 07:30", 0, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2027, 3, 2, 7, 30, 0, 0, time.Local); !got.Equal(want) {
		t.Fatalf("at: got %v, want %v", got, want)
	}
	got, err = triggerTime("", 10*time.Minute, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ref.Add(10 * time.Minute)) {
		t.Fatalf("in: got %v", got)
	}
	if _, err := triggerTime("", 0, ref); err != errWhenMissing {
		t.Fatalf("missing: got %v", err)
	}
	if _, err := triggerTime("2027-03-02 07:30", time.Minute, ref); err != errWhenConflict {
		t.Fatalf("conflict: got %v", err)
	}
	if _, err := triggerTime("tomorrow", 0, ref); err == nil {
		t.Fatal("expected a parse error")
	}
	if _, err := triggerTime("", -time.Minute, ref); err == nil {
		t.Fatal("expected an error for a negative delay")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"07:30", 7, 30, false},
		{" 23:59 ", 23, 59, false},
		{"0:05", 0, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"1230", 0, 0, true},
		{"ab:cd", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := parseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClock(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && (h != tt.h || m != tt.m) {
			t.Errorf("parseClock(%q) = %d:%d", tt.in, h, m)
		}
	}
}

func TestScheduleCommand(t *testing.T) {
	fc := &fakeClient{}
	withFakeClient(t, fc)
	ref := time.Date(2027, 3, 1, 8, 0, 0, 0, time.Local)
	now = func() time.Time { return ref }
	t.Cleanup(func() { now = time.Now })

	out := runCmd(t, cli.Command{Name: "schedule", Action: schedule, Flags: scheduleFlags},
		"--id", "7", "--title", "Pills", "--in", "15m", "--type", "medicine")

	if len(fc.scheduled) != 1 {
		t.Fatalf("scheduled = %d", len(fc.scheduled))
	}
	p := fc.scheduled[0]
	if p.ID == nil || *p.ID != 7 || p.Title != "Pills" || p.Type != "medicine" {
		t.Fatalf("params = %+v", p)
	}
	if p.TriggerAtMillis != ref.Add(15*time.Minute).UnixMilli() {
		t.Fatalf("trigger = %d", p.TriggerAtMillis)
	}
	if !strings.Contains(out, "Alarm 7 scheduled") {
		t.Fatalf("output = %q", out)
	}
	if !fc.closed {
		t.Fatal("client was not closed")
	}
}

func TestRepeatCommand(t *testing.T) {
	fc := &fakeClient{}
	withFakeClient(t, fc)

	out := runCmd(t, cli.Command{Name: "repeat", Action: repeat, Flags: repeatFlags},
		"--id", "3", "--time", "06:45")

	if len(fc.repeating) != 1 {
		t.Fatalf("repeating = %d", len(fc.repeating))
	}
	p := fc.repeating[0]
	if *p.Hour != 6 || *p.Minute != 45 || p.Type != "generic" {
		t.Fatalf("params = %+v", p)
	}
	if !strings.Contains(out, "rings daily at 06:45") {
		t.Fatalf("output = %q", out)
	}
}

func TestCancelCommand(t *testing.T) {
	fc := &fakeClient{alarms: []common.AlarmInfo{{ID: 4}}}
	withFakeClient(t, fc)

	out := runCmd(t, cli.Command{Name: "cancel", Action: cancel}, "4")
	if !strings.Contains(out, "Alarm 4 cancelled") {
		t.Fatalf("output = %q", out)
	}
	out = runCmd(t, cli.Command{Name: "cancel", Action: cancel}, "9")
	if !strings.Contains(out, "Alarm 9 was not pending") {
		t.Fatalf("output = %q", out)
	}
	if len(fc.cancelled) != 2 {
		t.Fatalf("cancelled = %v", fc.cancelled)
	}
}
