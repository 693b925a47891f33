// Package permission queries and requests the two capabilities reliable
// delivery depends on: scheduling exact timers, and exemption from
// background throttling. It keeps no state of its own.
package permission

import (
	"context"
	"strings"

	"github.com/warpdl/warpalarm/pkg/logger"
)

// State is derived on demand from the host; never stored.
type State struct {
	ExactTimerGranted     bool
	PowerExemptionGranted bool
}

// AllGranted reports whether nothing is missing.
func (s State) AllGranted() bool {
	return s.ExactTimerGranted && s.PowerExemptionGranted
}

// Host is the environment the gate reads from and opens grant flows on.
type Host interface {
	// Capabilities returns the detected capability table.
	Capabilities() Capabilities
	// ExactTimerGranted reports whether the user granted exact timers.
	ExactTimerGranted(ctx context.Context) (bool, error)
	// PowerExemptionGranted reports whether background throttling is lifted.
	PowerExemptionGranted(ctx context.Context) (bool, error)
	// OpenExactTimerGrant starts the grant flow and returns without waiting for the answer.
	OpenExactTimerGrant(ctx context.Context) error
	// OpenPowerExemptionGrant starts the exemption flow without waiting.
	OpenPowerExemptionGrant(ctx context.Context) error
	// OpenSettings opens the general settings surface; the fallback when a
	// dedicated flow cannot be opened.
	OpenSettings(ctx context.Context) error
}

// Gate is the PermissionGate.
type Gate struct {
	host Host
	log  logger.Logger
}

// NewGate creates a Gate over host.
func NewGate(host Host, l logger.Logger) *Gate {
	return &Gate{host: host, log: l}
}

// Query reads both flags. A host read error counts as not granted.
func (g *Gate) Query(ctx context.Context) State {
	caps := g.host.Capabilities()
	var st State

	if caps.ExactTimer {
		ok, err := g.host.ExactTimerGranted(ctx)
		if err != nil {
			g.log.Warning("permission: exact timer grant unreadable: %v", err)
		}
		st.ExactTimerGranted = ok && err == nil
	}
	if caps.ForegroundExecution {
		ok, err := g.host.PowerExemptionGranted(ctx)
		if err != nil {
			g.log.Warning("permission: power exemption unreadable: %v", err)
		}
		st.PowerExemptionGranted = ok && err == nil
	}
	return st
}

// RequestMissing opens the grant flow of every flag that is false in st.
// It never waits for the user and never fails: the caller re-queries later.
func (g *Gate) RequestMissing(ctx context.Context, st State) {
	if !st.ExactTimerGranted {
		if err := g.host.OpenExactTimerGrant(ctx); err != nil {
			g.log.Warning("permission: cannot open exact timer grant: %v", err)
			g.openSettings(ctx)
		}
	}
	if !st.PowerExemptionGranted {
		if err := g.host.OpenPowerExemptionGrant(ctx); err != nil {
			g.log.Warning("permission: cannot open power exemption flow: %v", err)
			g.openSettings(ctx)
		}
	}
}

func (g *Gate) openSettings(ctx context.Context) {
	if err := g.host.OpenSettings(ctx); err != nil {
		g.log.Error("permission: cannot open settings: %v", err)
	}
}

// Explain is the human-readable summary of st.
func (g *Gate) Explain(st State) string {
	return Explain(st)
}

// Explain describes which capabilities are missing and why they matter.
func Explain(st State) string {
	if st.AllGranted() {
		return "All permissions granted! Alarms will work reliably."
	}
	var b strings.Builder
	if !st.ExactTimerGranted {
		b.WriteString("⏰ Exact Alarm Permission:\nNeeded to trigger alarms at exact time.\n\n")
	}
	if !st.PowerExemptionGranted {
		b.WriteString("🔋 Battery Optimization:\nDisable to ensure alarms work when app is closed.\n\n")
	}
	b.WriteString("⚠️ Without these, alarms may NOT ring when app is closed!")
	return b.String()
}
