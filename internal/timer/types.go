package timer

import (
	"context"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
)

// Registration is one pending timer keyed by alarm id.
type Registration struct {
	// ID is the alarm id; at most one registration exists per id.
	ID int
	// TriggerAt is the wall-clock fire time.
	TriggerAt time.Time
	// Alarm is the payload handed to the fire callback.
	Alarm alarm.Alarm
	// CronExpr re-arms the registration after it fires.
	// Empty string means one-shot.
	CronExpr string
}

// Store persists registrations independently of the daemon process.
type Store interface {
	// Put inserts or replaces the registration with the same ID.
	Put(ctx context.Context, r Registration) error
	// Delete removes the registration for id and reports whether it existed.
	Delete(ctx context.Context, id int) (bool, error)
	// Consume removes r only if the stored registration for r.ID still
	// triggers at r.TriggerAt. It reports whether r was consumed.
	Consume(ctx context.Context, r Registration) (bool, error)
	// Advance moves r to next under the same condition as Consume.
	Advance(ctx context.Context, r Registration, next Registration) (bool, error)
	// Get returns the registration stored for id.
	Get(ctx context.Context, id int) (Registration, bool, error)
	// List returns all registrations ordered by trigger time.
	List(ctx context.Context) ([]Registration, error)
}
