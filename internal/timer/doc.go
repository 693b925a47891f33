// Package timer is the durable precise-timer service hosted by the daemon.
// It runs a single-goroutine loop over a min-heap of Registrations sorted by
// trigger time, with a 60-second max-sleep-cap so NTP steps, DST transitions
// and system suspend never leave it oversleeping.
//
// Every registration is written to a Store before it enters the heap; the
// store is the source of truth. A registration fires only if the store still
// holds exactly that registration, which makes delivery at-most-once and lets
// cancel win over a racing fire. On daemon restart the heap is rebuilt from
// the store and registrations whose time already passed fire immediately.
package timer
