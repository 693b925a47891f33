package server

import (
	"context"
	"sync"
	"time"

	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/ring"
	"github.com/warpdl/warpalarm/pkg/logger"
)

type fakeScheduler struct {
	mu      sync.Mutex
	pending map[int]alarm.Alarm
	err     error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[int]alarm.Alarm)}
}

func (f *fakeScheduler) Schedule(_ context.Context, a alarm.Alarm) error {
	if err := a.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pending[a.ID] = a
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[id]
	delete(f.pending, id)
	return ok, nil
}

func (f *fakeScheduler) ScheduleRepeating(ctx context.Context, a alarm.Alarm, hour, minute int) (alarm.Alarm, error) {
	a.TriggerAt = alarm.Millis(alarm.NextDaily(time.Now(), hour, minute))
	a.Repeat = &alarm.Daily{Hour: hour, Minute: minute}
	return a, f.Schedule(ctx, a)
}

func (f *fakeScheduler) Pending(context.Context) ([]alarm.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []alarm.Alarm
	for _, a := range f.pending {
		out = append(out, a)
	}
	return out, nil
}

type fakePerms struct {
	st        permission.State
	requested int
	granted   []string
}

func (f *fakePerms) Query(context.Context) permission.State { return f.st }

func (f *fakePerms) RequestMissing(context.Context, permission.State) { f.requested++ }

func (f *fakePerms) Explain(st permission.State) string { return permission.Explain(st) }

func (f *fakePerms) Grant(_ context.Context, c string) error {
	if c != permission.CapabilityExact && c != permission.CapabilityPower {
		return permission.ErrUnknownCapability
	}
	f.granted = append(f.granted, c)
	return nil
}

type fakeRinger struct {
	mu     sync.Mutex
	active *alarm.Alarm
	next   alarm.Alarm
	err    error
}

func (f *fakeRinger) Status() ring.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return ring.Status{State: ring.StateIdle}
	}
	a := *f.active
	return ring.Status{State: ring.StateRinging, SessionID: "s-1", Alarm: &a, StartedAt: time.UnixMilli(1000)}
}

func (f *fakeRinger) Dismiss(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok := f.active != nil
	f.active = nil
	return ok
}

func (f *fakeRinger) Snooze(context.Context) (alarm.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return alarm.Alarm{}, nil
	}
	f.active = nil
	return f.next, f.err
}

func newTestAPI() (*API, *fakeScheduler, *fakePerms, *fakeRinger) {
	s := newFakeScheduler()
	p := &fakePerms{st: permission.State{ExactTimerGranted: true, PowerExemptionGranted: true}}
	r := &fakeRinger{}
	api := NewAPI(s, p, r, logger.NewNopLogger(), common.VersionResult{Version: "1.0.0", Commit: "abc123"})
	return api, s, p, r
}
