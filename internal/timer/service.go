package timer

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const maxSleepCap = 60 * time.Second

// FireFunc receives the payload of a registration whose time has come.
// It runs on its own goroutine so a slow delivery never stalls the loop.
type FireFunc func(a alarm.Alarm)

// Service owns the heap loop and the durable store behind it.
type Service struct {
	store    Store
	log      logger.Logger
	onFire   FireFunc
	opChan   chan op
	ctx      context.Context
	inflight sync.WaitGroup
	// mu keeps the store write and the heap update of one call adjacent,
	// so the loop sees operations in the order the store applied them.
	mu sync.Mutex
}

type opKind int

const (
	opAdd opKind = iota
	opRemove
)

type op struct {
	kind opKind
	reg  Registration
	id   int
}

// New creates and starts a Service. The loop exits when ctx is cancelled;
// registrations stay in the store for the next Restore.
func New(ctx context.Context, store Store, l logger.Logger, onFire FireFunc) *Service {
	s := &Service{
		store:  store,
		log:    l,
		onFire: onFire,
		opChan: make(chan op, 64),
		ctx:    ctx,
	}
	go s.run()
	return s
}

// FromAlarm builds the registration for a. Alarms carrying a daily repeat
// get a cron expression so they re-arm after firing.
func FromAlarm(a alarm.Alarm) Registration {
	r := Registration{
		ID:        a.ID,
		TriggerAt: a.Time(),
		Alarm:     a,
	}
	if a.Repeat != nil {
		r.CronExpr = a.Repeat.CronExpr()
	}
	return r
}

// Register persists r and arms it, replacing any registration with the same ID.
func (s *Service) Register(ctx context.Context, r Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Put(ctx, r); err != nil {
		return fmt.Errorf("persist registration %d: %w", r.ID, err)
	}
	s.add(r)
	return nil
}

// Unregister removes the registration for id from the store and the heap.
// It reports whether a stored registration existed.
func (s *Service) Unregister(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.store.Delete(ctx, id)
	s.remove(id)
	if err != nil {
		return false, fmt.Errorf("delete registration %d: %w", id, err)
	}
	return ok, nil
}

// Pending lists the stored registrations.
func (s *Service) Pending(ctx context.Context) ([]Registration, error) {
	return s.store.List(ctx)
}

// Restore rebuilds the heap from the store. Registrations whose time already
// passed are armed as-is and therefore fire immediately.
func (s *Service) Restore(ctx context.Context, now time.Time) (missed []Registration, err error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	missed, future := SplitMissed(regs, now)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range missed {
		s.log.Warning("alarm %d missed its time %s, firing now", r.ID, r.TriggerAt.Format(time.RFC3339))
		s.add(r)
	}
	for _, r := range future {
		s.add(r)
	}
	return missed, nil
}

// Wait blocks until every fire callback started so far has returned.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) add(r Registration) {
	s.send(op{kind: opAdd, reg: r})
}

func (s *Service) remove(id int) {
	s.send(op{kind: opRemove, id: id})
}

func (s *Service) send(o op) {
	select {
	case s.opChan <- o:
	case <-s.ctx.Done():
	}
}

// run is the active-object loop. It owns the heap exclusively.
func (s *Service) run() {
	h := &regHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := time.Until((*h)[0].TriggerAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case o := <-s.opChan:
			switch o.kind {
			case opAdd:
				heapUpsert(h, o.reg)
			case opRemove:
				heapRemoveByID(h, o.id)
			}
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				r := heapPop(h)
				if next, ok := s.fire(r, now); ok {
					heapUpsert(h, next)
				}
			}
			timerCh = resetTimer()
		}
	}
}

// fire claims r in the store and hands its payload off. When r repeats, the
// claim advances it to the next occurrence, which is returned for re-arming.
// When the claim fails the heap entry is stale: a replacement the store still
// holds is returned for arming instead, otherwise the id was cancelled.
func (s *Service) fire(r Registration, now time.Time) (Registration, bool) {
	var (
		next    Registration
		rearmed bool
	)
	if r.CronExpr != "" {
		t, err := nextCronOccurrence(r.CronExpr, now)
		if err != nil {
			s.log.Error("alarm %d: bad repeat expression %q: %v", r.ID, r.CronExpr, err)
		} else {
			next = r
			next.TriggerAt = t
			next.Alarm.TriggerAt = alarm.Millis(t)
			rearmed = true
		}
	}

	var (
		live bool
		err  error
	)
	if rearmed {
		live, err = s.store.Advance(s.ctx, r, next)
	} else {
		live, err = s.store.Consume(s.ctx, r)
	}
	if err != nil {
		// The store is unreachable; ringing is still the safer outcome.
		s.log.Error("alarm %d: claim registration: %v", r.ID, err)
		live = true
	}
	if !live {
		return s.reload(r)
	}

	s.log.Info("alarm %d fired", r.ID)
	s.inflight.Add(1)
	go func(a alarm.Alarm) {
		defer s.inflight.Done()
		s.onFire(a)
	}(r.Alarm)
	return next, rearmed
}

// reload looks up the stored registration that superseded r.
func (s *Service) reload(r Registration) (Registration, bool) {
	cur, ok, err := s.store.Get(s.ctx, r.ID)
	if err != nil {
		s.log.Error("alarm %d: reload registration: %v", r.ID, err)
		return Registration{}, false
	}
	if !ok || cur.TriggerAt.Equal(r.TriggerAt) {
		s.log.Info("alarm %d cancelled before firing", r.ID)
		return Registration{}, false
	}
	s.log.Info("alarm %d superseded before firing, re-arming for %s", r.ID, cur.TriggerAt.Format(time.RFC3339))
	return cur, true
}

// nextCronOccurrence returns the next time expr fires strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// SplitMissed partitions registrations into those whose time is already
// past at now and those still ahead.
func SplitMissed(regs []Registration, now time.Time) (missed, future []Registration) {
	for _, r := range regs {
		if r.TriggerAt.Before(now) {
			missed = append(missed, r)
		} else {
			future = append(future, r)
		}
	}
	return missed, future
}
