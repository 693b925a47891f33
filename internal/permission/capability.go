package permission

import "fmt"

// Capabilities is the table of delivery primitives available on this host.
// It is filled by probing for each primitive, never by comparing OS versions.
type Capabilities struct {
	// ExactTimer: a durable timer store is available to the daemon.
	ExactTimer bool
	// ForegroundExecution: the daemon can be started with the session.
	ForegroundExecution bool
	// Notifications: a notification server answers on the session bus.
	Notifications bool
	// WakeInhibit: the login manager accepts sleep inhibitors.
	WakeInhibit bool
	// Sound: an audio output device can be opened.
	Sound bool
	// Vibration: a haptic device is present.
	Vibration bool
}

// Probe reports whether one primitive is available.
type Probe func() bool

// Probes maps each capability to its detector. Nil probes mean unavailable.
type Probes struct {
	ExactTimer          Probe
	ForegroundExecution Probe
	Notifications       Probe
	WakeInhibit         Probe
	Sound               Probe
	Vibration           Probe
}

// Detect runs every probe once.
func Detect(p Probes) Capabilities {
	run := func(pr Probe) bool { return pr != nil && pr() }
	return Capabilities{
		ExactTimer:          run(p.ExactTimer),
		ForegroundExecution: run(p.ForegroundExecution),
		Notifications:       run(p.Notifications),
		WakeInhibit:         run(p.WakeInhibit),
		Sound:               run(p.Sound),
		Vibration:           run(p.Vibration),
	}
}

func (c Capabilities) String() string {
	return fmt.Sprintf("exact=%t foreground=%t notify=%t inhibit=%t sound=%t vibrate=%t",
		c.ExactTimer, c.ForegroundExecution, c.Notifications, c.WakeInhibit, c.Sound, c.Vibration)
}
