package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/store"
	"github.com/warpdl/warpalarm/internal/timer"
	"github.com/warpdl/warpalarm/pkg/logger"
)

type fixedGate permission.State

func (g fixedGate) Query(context.Context) permission.State { return permission.State(g) }

var granted = fixedGate{ExactTimerGranted: true, PowerExemptionGranted: true}

type harness struct {
	s     *Scheduler
	db    *store.DB
	fired chan alarm.Alarm
	stop  func()
}

func newHarness(t *testing.T, gate Gate, path string) *harness {
	t.Helper()
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan alarm.Alarm, 8)
	svc := timer.New(ctx, db, logger.NewNopLogger(), func(a alarm.Alarm) { fired <- a })
	stop := func() {
		cancel()
		svc.Wait()
		db.Close()
	}
	t.Cleanup(stop)
	return &harness{s: New(gate, svc, logger.NewNopLogger(), nil), db: db, fired: fired, stop: stop}
}

func future(d time.Duration) int64 {
	return alarm.Millis(time.Now().Add(d))
}

func pendingIDs(t *testing.T, s *Scheduler) map[int]bool {
	t.Helper()
	list, err := s.Pending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ids := map[int]bool{}
	for _, a := range list {
		ids[a.ID] = true
	}
	return ids
}

func TestSchedule_Validation(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	tests := []struct {
		name string
		a    alarm.Alarm
		msg  string
	}{
		{"missing id", alarm.Alarm{ID: -1, TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}, "Alarm ID is required"},
		{"missing time", alarm.Alarm{ID: 1, Type: alarm.TypeGeneric}, "triggerAtMillis is required"},
		{"bad type", alarm.Alarm{ID: 1, TriggerAt: future(time.Hour), Type: "party"}, "unknown alarm type"},
		{"snooze id range", alarm.Alarm{ID: alarm.SnoozeAlarmID(2), TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}, "alarm id must be below 10000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.s.Schedule(context.Background(), tt.a)
			if !errors.Is(err, alarm.ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
	if len(pendingIDs(t, h.s)) != 0 {
		t.Error("invalid request left a registration")
	}
}

func TestSchedule_PermissionDenied(t *testing.T) {
	h := newHarness(t, fixedGate{PowerExemptionGranted: true}, ":memory:")
	err := h.s.Schedule(context.Background(), alarm.Alarm{ID: 1, TriggerAt: future(time.Hour), Type: alarm.TypeGeneric})
	if !errors.Is(err, alarm.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if len(pendingIDs(t, h.s)) != 0 {
		t.Error("denied schedule registered a timer")
	}
}

func TestSchedule_MissingPowerExemptionOnlyWarns(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := logger.NewMockLogger()
	s := New(fixedGate{ExactTimerGranted: true}, timer.New(ctx, db, l, func(alarm.Alarm) {}), l, nil)
	if err := s.Schedule(ctx, alarm.Alarm{ID: 1, TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}); err != nil {
		t.Fatal(err)
	}
	if !l.HasWarning("power exemption missing") {
		t.Errorf("warnings = %v", l.Warnings())
	}
}

func TestScheduleThenCancel(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	ctx := context.Background()
	for _, id := range []int{0, 1, 42, 9999} {
		a := alarm.Alarm{ID: id, TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}
		if err := h.s.Schedule(ctx, a); err != nil {
			t.Fatal(err)
		}
		if _, err := h.s.Snooze(ctx, a, time.Now()); err != nil {
			t.Fatal(err)
		}
		ok, err := h.s.Cancel(ctx, id)
		if err != nil || !ok {
			t.Fatalf("Cancel(%d) = %v, %v", id, ok, err)
		}
		ids := pendingIDs(t, h.s)
		if ids[id] || ids[alarm.SnoozeAlarmID(id)] {
			t.Errorf("Cancel(%d) left %v", id, ids)
		}
	}
}

func TestCancel_Idempotent(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	ctx := context.Background()
	_ = h.s.Schedule(ctx, alarm.Alarm{ID: 3, TriggerAt: future(time.Hour), Type: alarm.TypeGeneric})
	if ok, err := h.s.Cancel(ctx, 3); !ok || err != nil {
		t.Fatalf("first cancel = %v, %v", ok, err)
	}
	if ok, err := h.s.Cancel(ctx, 3); ok || err != nil {
		t.Errorf("second cancel = %v, %v", ok, err)
	}
	if ok, err := h.s.Cancel(ctx, 77); ok || err != nil {
		t.Errorf("unknown cancel = %v, %v", ok, err)
	}
}

func TestSchedule_DuplicateIDReplaces(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	ctx := context.Background()
	first := alarm.Alarm{ID: 8, Title: "first", TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}
	second := alarm.Alarm{ID: 8, Title: "second", TriggerAt: future(2 * time.Hour), Type: alarm.TypeGeneric}
	if err := h.s.Schedule(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := h.s.Schedule(ctx, second); err != nil {
		t.Fatalf("duplicate schedule rejected: %v", err)
	}
	list, _ := h.s.Pending(ctx)
	if len(list) != 1 || list[0].Title != "second" || list[0].TriggerAt != second.TriggerAt {
		t.Errorf("pending = %+v", list)
	}
}

func TestSchedule_CancelAndRescheduleFires(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	ctx := context.Background()
	if err := h.s.Schedule(ctx, alarm.Alarm{ID: 8, Title: "first", TriggerAt: future(time.Hour), Type: alarm.TypeGeneric}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.s.Cancel(ctx, 8); err != nil {
		t.Fatal(err)
	}
	if err := h.s.Schedule(ctx, alarm.Alarm{ID: 8, Title: "second", TriggerAt: future(200 * time.Millisecond), Type: alarm.TypeGeneric}); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-h.fired:
		if got.ID != 8 || got.Title != "second" {
			t.Errorf("fired %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("rescheduled alarm did not fire")
	}
}

func TestSchedule_PastFiresImmediately(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	a := alarm.Alarm{ID: 4, Title: "late", TriggerAt: alarm.Millis(time.Now().Add(-time.Minute)), Type: alarm.TypeGeneric}
	if err := h.s.Schedule(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-h.fired:
		if got.ID != 4 {
			t.Errorf("fired %d", got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("past alarm did not fire")
	}
}

func TestScheduleRepeating(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	now := time.Date(2027, 6, 1, 8, 30, 15, 0, time.Local)
	h.s.now = func() time.Time { return now }

	a, err := h.s.ScheduleRepeating(context.Background(), alarm.Alarm{ID: 5, Type: alarm.TypeGeneric}, 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2027, 6, 2, 7, 0, 0, 0, time.Local)
	if !a.Time().Equal(want) {
		t.Errorf("next = %v, want %v", a.Time(), want)
	}
	if a.Repeat == nil || a.Repeat.CronExpr() != "0 7 * * *" {
		t.Errorf("repeat = %+v", a.Repeat)
	}

	a, err = h.s.ScheduleRepeating(context.Background(), alarm.Alarm{ID: 6, Type: alarm.TypeGeneric}, 9, 15)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2027, 6, 1, 9, 15, 0, 0, time.Local); !a.Time().Equal(want) {
		t.Errorf("later today = %v, want %v", a.Time(), want)
	}
}

func TestScheduleRepeating_Range(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	for _, hm := range [][2]int{{24, 0}, {-1, 0}, {0, 60}, {0, -1}} {
		_, err := h.s.ScheduleRepeating(context.Background(), alarm.Alarm{ID: 1}, hm[0], hm[1])
		if !errors.Is(err, alarm.ErrInvalidRequest) {
			t.Errorf("%v: err = %v", hm, err)
		}
	}
}

func TestSnooze(t *testing.T) {
	h := newHarness(t, granted, ":memory:")
	now := time.Now()
	origin := alarm.Alarm{ID: 2, Title: "Meds", Body: "with food", Type: alarm.TypeMedicine, TriggerAt: alarm.Millis(now)}

	next, err := h.s.Snooze(context.Background(), origin, now)
	if err != nil {
		t.Fatal(err)
	}
	if next.ID != 10002 || next.TriggerAt != alarm.Millis(now.Add(5*time.Minute)) {
		t.Errorf("snoozed = %+v", next)
	}
	if next.Type != alarm.TypeGeneric || next.Title != "Meds" || next.Body != "with food" {
		t.Errorf("snoozed = %+v", next)
	}
	again, err := h.s.Snooze(context.Background(), next, now.Add(5*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != 10002 {
		t.Errorf("snooze of snooze id = %d, want 10002", again.ID)
	}
	if ok, _ := h.s.Cancel(context.Background(), 2); !ok {
		t.Error("cancel(2) did not reach the snooze")
	}
	if ids := pendingIDs(t, h.s); len(ids) != 0 {
		t.Errorf("pending = %v", ids)
	}
}

func TestSnooze_PermissionRevoked(t *testing.T) {
	h := newHarness(t, fixedGate{}, ":memory:")
	_, err := h.s.Snooze(context.Background(), alarm.Alarm{ID: 1, Type: alarm.TypeGeneric, TriggerAt: 1}, time.Now())
	if !errors.Is(err, alarm.ErrRescheduleFailed) || !errors.Is(err, alarm.ErrPermissionDenied) {
		t.Errorf("err = %v", err)
	}
}

func TestRegistrationSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarms.db")
	first := newHarness(t, granted, path)
	a := alarm.Alarm{ID: 1, Title: "Wake up", TriggerAt: future(300 * time.Millisecond), Type: alarm.TypeGeneric}
	if err := first.s.Schedule(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	// The first process dies before the alarm is due.
	first.stop()

	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan alarm.Alarm, 1)
	svc := timer.New(ctx, db, logger.NewNopLogger(), func(a alarm.Alarm) { fired <- a })
	if _, err := svc.Restore(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-fired:
		if got.ID != 1 || got.Title != "Wake up" {
			t.Errorf("fired %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("restored alarm never fired")
	}
	regs, _ := db.List(ctx)
	if len(regs) != 0 {
		t.Errorf("registrations after fire = %+v", regs)
	}
}
