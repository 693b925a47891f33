// Package delivery hands a fired alarm to the ringing controller, falling
// back to a plain notification when no ringing session can start.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/metrics"
	"github.com/warpdl/warpalarm/internal/notify"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// DefaultBudget bounds a single delivery.
const DefaultBudget = 10 * time.Second

// Strategy names.
const (
	StrategyRing     = "ring"
	StrategyFallback = "fallback-notification"
)

// Strategy is one way of putting an alarm in front of the user.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, a alarm.Alarm) error
}

// Ringer starts a ringing session.
type Ringer interface {
	Start(ctx context.Context, a alarm.Alarm) error
}

// Ring delivers through the ringing controller.
func Ring(r Ringer) Strategy {
	return Strategy{Name: StrategyRing, Run: r.Start}
}

// Fallback posts the emergency notification on s.
func Fallback(s notify.Surface, now func() time.Time) Strategy {
	return Strategy{
		Name: StrategyFallback,
		Run: func(ctx context.Context, a alarm.Alarm) error {
			return s.Show(ctx, notify.BuildFallback(a, now()))
		},
	}
}

// Deliverer tries strategies in order and stops at the first success.
type Deliverer struct {
	strategies []Strategy
	budget     time.Duration
	log        logger.Logger
	metrics    *metrics.Metrics
}

// New creates a Deliverer that tries strategies in the given order. A
// non-positive budget falls back to DefaultBudget.
func New(budget time.Duration, l logger.Logger, m *metrics.Metrics, strategies ...Strategy) *Deliverer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Deliverer{strategies: strategies, budget: budget, log: l, metrics: m}
}

// Deliver runs the strategies under the delivery budget. A degraded ring is
// a success. When every strategy fails the error wraps
// alarm.ErrDeliveryFailed and each strategy's cause.
func (d *Deliverer) Deliver(ctx context.Context, a alarm.Alarm) error {
	ctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	var errs []error
	for _, s := range d.strategies {
		err := s.Run(ctx, a)
		switch {
		case err == nil:
			d.metrics.Delivery(s.Name, metrics.OutcomeOK)
			return nil
		case errors.Is(err, alarm.ErrDeliveryDegraded):
			d.metrics.Delivery(s.Name, metrics.OutcomeDegraded)
			d.log.Warning("alarm %d delivered degraded via %s: %v", a.ID, s.Name, err)
			return nil
		}
		d.metrics.Delivery(s.Name, metrics.OutcomeFailed)
		d.log.Error("alarm %d: %s failed: %v", a.ID, s.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return fmt.Errorf("%w: alarm %d: %w", alarm.ErrDeliveryFailed, a.ID, errors.Join(errs...))
}

// Fire is the timer callback.
func (d *Deliverer) Fire(a alarm.Alarm) {
	if err := d.Deliver(context.Background(), a); err != nil {
		d.log.Error("%v", err)
	}
}
