package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/pkg/logger"
)

type sentNotification struct {
	replaces uint32
	summary  string
	body     string
	actions  []string
	hints    map[string]dbus.Variant
}

type fakeServer struct {
	mu     sync.Mutex
	next   uint32
	sent   []sentNotification
	closed []uint32
	err    error
}

func (f *fakeServer) Notify(_ string, replacesID uint32, _, summary, body string, actions []string, hints map[string]dbus.Variant, _ int32) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, sentNotification{replacesID, summary, body, actions, hints})
	if replacesID != 0 {
		return replacesID, nil
	}
	f.next++
	return f.next, nil
}

func (f *fakeServer) CloseNotification(id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return nil
}

func actionSignal(id uint32, key string) *dbus.Signal {
	return &dbus.Signal{Name: signalAction, Body: []interface{}{id, key}}
}

func TestDBusSurface_ShowReplacesSlot(t *testing.T) {
	srv := &fakeServer{}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	ctx := context.Background()

	if err := s.Show(ctx, Build(alarm.Alarm{ID: 1, TriggerAt: 1}, at)); err != nil {
		t.Fatal(err)
	}
	if err := s.Show(ctx, Build(alarm.Alarm{ID: 2, TriggerAt: 1}, at)); err != nil {
		t.Fatal(err)
	}
	if len(srv.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(srv.sent))
	}
	if srv.sent[1].replaces != 1 {
		t.Errorf("second notification replaces %d, want 1", srv.sent[1].replaces)
	}
	want := []string{"dismiss:1002", "DISMISS", "snooze:2002", "SNOOZE", "default", "Open"}
	if len(srv.sent[1].actions) != len(want) {
		t.Fatalf("actions = %v", srv.sent[1].actions)
	}
	for i := range want {
		if srv.sent[1].actions[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, srv.sent[1].actions[i], want[i])
		}
	}
	if u := srv.sent[1].hints["urgency"].Value(); u != urgencyCritical {
		t.Errorf("urgency = %v", u)
	}
}

func TestDBusSurface_Withdraw(t *testing.T) {
	srv := &fakeServer{}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	ctx := context.Background()
	if err := s.Withdraw(ctx, Slot); err != nil {
		t.Fatalf("withdraw of empty slot: %v", err)
	}
	if len(srv.closed) != 0 {
		t.Fatal("closed a notification that was never shown")
	}
	_ = s.Show(ctx, Build(alarm.Alarm{ID: 1, TriggerAt: 1}, at))
	if err := s.Withdraw(ctx, Slot); err != nil {
		t.Fatal(err)
	}
	if len(srv.closed) != 1 || srv.closed[0] != 1 {
		t.Errorf("closed = %v", srv.closed)
	}
}

func TestDBusSurface_ShowError(t *testing.T) {
	srv := &fakeServer{err: errors.New("no server")}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	if err := s.Show(context.Background(), Build(alarm.Alarm{ID: 1, TriggerAt: 1}, at)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDBusSurface_DispatchesActions(t *testing.T) {
	srv := &fakeServer{}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	type tap struct {
		action string
		id     int
	}
	var got []tap
	s.OnAction(func(action string, id int) { got = append(got, tap{action, id}) })
	_ = s.Show(context.Background(), Build(alarm.Alarm{ID: 5, TriggerAt: 1}, at))

	s.dispatch(actionSignal(1, "snooze:2005"))
	s.dispatch(actionSignal(1, "dismiss:1005"))
	s.dispatch(actionSignal(1, "default"))
	s.dispatch(actionSignal(99, "dismiss:1005"))

	want := []tap{{ActionSnooze, 5}, {ActionDismiss, 5}, {ActionOpen, 5}}
	if len(got) != len(want) {
		t.Fatalf("taps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tap[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDBusSurface_MalformedActionIsLogged(t *testing.T) {
	srv := &fakeServer{}
	l := logger.NewMockLogger()
	s := newDBusSurface(srv, "warpalarm", l)
	s.OnAction(func(string, int) { t.Fatal("handler must not run") })
	_ = s.Show(context.Background(), Build(alarm.Alarm{ID: 5, TriggerAt: 1}, at))
	s.dispatch(actionSignal(1, "bogus"))
	if !l.HasWarning("malformed action key") {
		t.Errorf("warnings = %v", l.Warnings())
	}
}

func TestDBusSurface_Prompt(t *testing.T) {
	srv := &fakeServer{}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	allowed := 0
	if err := s.Prompt(context.Background(), "Allow exact alarms?", "body", func() { allowed++ }); err != nil {
		t.Fatal(err)
	}
	if err := s.Prompt(context.Background(), "Keep alarms running?", "body", func() { allowed += 10 }); err != nil {
		t.Fatal(err)
	}
	s.dispatch(actionSignal(1, promptAllow))
	s.dispatch(actionSignal(1, promptAllow))
	s.dispatch(actionSignal(2, promptDeny))
	if allowed != 1 {
		t.Errorf("allowed = %d, want 1", allowed)
	}
}

func TestDBusSurface_ClosedPromptIsForgotten(t *testing.T) {
	srv := &fakeServer{}
	s := newDBusSurface(srv, "warpalarm", logger.NewNopLogger())
	called := false
	_ = s.Prompt(context.Background(), "t", "b", func() { called = true })
	s.dispatch(&dbus.Signal{Name: signalClosed, Body: []interface{}{uint32(1), uint32(2)}})
	s.dispatch(actionSignal(1, promptAllow))
	if called {
		t.Error("closed prompt still granted")
	}
}

func TestMulti(t *testing.T) {
	ok := NewLogSurface(logger.NewNopLogger())
	bad := newDBusSurface(&fakeServer{err: errors.New("down")}, "a", logger.NewNopLogger())
	ctx := context.Background()
	spec := Build(alarm.Alarm{ID: 1, TriggerAt: 1}, at)
	if err := (Multi{bad, ok}).Show(ctx, spec); err != nil {
		t.Errorf("one surface succeeded, got %v", err)
	}
	if err := (Multi{bad}).Show(ctx, spec); err == nil {
		t.Error("all surfaces failed, want error")
	}
}
