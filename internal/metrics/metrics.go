// Package metrics exposes Prometheus collectors for the alarm lifecycle.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "warpalarm"

// Delivery outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	scheduled          prometheus.Counter
	cancelled          prometheus.Counter
	deliveries         *prometheus.CounterVec
	sessionsActive     prometheus.Gauge
	snoozes            prometheus.Counter
	rescheduleFailures prometheus.Counter
}

// MustNewMetrics registers the collectors on reg, reusing collectors that are
// already registered under the same name. Other registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_scheduled_total",
			Help:      "Alarms registered, including replacements and snoozes.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_cancelled_total",
			Help:      "Cancel calls that removed at least one registration.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery strategy attempts by outcome.",
		}, []string{"strategy", "outcome"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ring_sessions_active",
			Help:      "Ringing sessions currently active (0 or 1).",
		}),
		snoozes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snoozes_total",
			Help:      "Snoozed ringing sessions.",
		}),
		rescheduleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedule_failures_total",
			Help:      "Snoozes whose follow-up registration failed.",
		}),
	}
	m.scheduled = register(reg, m.scheduled)
	m.cancelled = register(reg, m.cancelled)
	m.deliveries = register(reg, m.deliveries)
	m.sessionsActive = register(reg, m.sessionsActive)
	m.snoozes = register(reg, m.snoozes)
	m.rescheduleFailures = register(reg, m.rescheduleFailures)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) Scheduled() {
	if m == nil {
		return
	}
	m.scheduled.Inc()
}

func (m *Metrics) Cancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

// Delivery records one strategy attempt.
func (m *Metrics) Delivery(strategy, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(strategy, outcome).Inc()
}

// SessionActive sets the ringing gauge.
func (m *Metrics) SessionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.sessionsActive.Set(1)
		return
	}
	m.sessionsActive.Set(0)
}

func (m *Metrics) Snoozed() {
	if m == nil {
		return
	}
	m.snoozes.Inc()
}

func (m *Metrics) RescheduleFailed() {
	if m == nil {
		return
	}
	m.rescheduleFailures.Inc()
}
