package permission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// Capability names accepted by Grant and recorded in the grant store.
const (
	CapabilityExact = "exact"
	CapabilityPower = "power"
)

var (
	// ErrNoPromptSurface means no interactive surface exists to ask the user.
	ErrNoPromptSurface = errors.New("no prompt surface available")

	// ErrUnknownCapability is returned by Grant for names other than exact/power.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrGrantUnsupported is returned when the host cannot record grants.
	ErrGrantUnsupported = errors.New("host does not support direct grants")
)

// GrantStore records user grants durably.
type GrantStore interface {
	Granted(ctx context.Context, capability string) (bool, error)
	Grant(ctx context.Context, capability string) error
}

// Prompter asks the user something without blocking.
type Prompter interface {
	// Prompt shows title/body with allow and deny choices. onAllow runs
	// later, if and when the user allows.
	Prompt(ctx context.Context, title, body string, onAllow func()) error
	// Inform shows a message with no choices.
	Inform(ctx context.Context, title, body string) error
}

// AutostartApp is the session autostart entry; *autostart.App satisfies it.
type AutostartApp interface {
	IsEnabled() bool
	Enable() error
}

// Granter is implemented by hosts that accept grants recorded from a
// settings surface such as the CLI.
type Granter interface {
	Grant(ctx context.Context, capability string) error
}

// DesktopHost maps the two capabilities onto a desktop session:
// the exact-timer grant lives in the grant store, and the power exemption is
// the daemon starting with the user session so it is never left unloaded.
type DesktopHost struct {
	caps      Capabilities
	grants    GrantStore
	prompter  Prompter
	autostart AutostartApp
	log       logger.Logger
}

// NewDesktopHost wires a host. prompter and app may be nil.
func NewDesktopHost(caps Capabilities, grants GrantStore, prompter Prompter, app AutostartApp, l logger.Logger) *DesktopHost {
	return &DesktopHost{
		caps:      caps,
		grants:    grants,
		prompter:  prompter,
		autostart: app,
		log:       l,
	}
}

// NewAutostartApp builds the autostart entry that launches "<exe> daemon".
func NewAutostartApp(name, displayName string) (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	return &autostart.App{
		Name:        name,
		DisplayName: displayName,
		Exec:        []string{execPath, "daemon"},
	}, nil
}

func (h *DesktopHost) Capabilities() Capabilities {
	return h.caps
}

func (h *DesktopHost) ExactTimerGranted(ctx context.Context) (bool, error) {
	return h.grants.Granted(ctx, CapabilityExact)
}

func (h *DesktopHost) PowerExemptionGranted(_ context.Context) (bool, error) {
	if h.autostart == nil {
		return false, nil
	}
	return h.autostart.IsEnabled(), nil
}

func (h *DesktopHost) OpenExactTimerGrant(ctx context.Context) error {
	if h.prompter == nil {
		return ErrNoPromptSurface
	}
	return h.prompter.Prompt(ctx,
		"Allow exact alarms?",
		"warpalarm needs permission to ring alarms at the exact time you set.",
		func() { h.record(CapabilityExact) },
	)
}

func (h *DesktopHost) OpenPowerExemptionGrant(ctx context.Context) error {
	if h.prompter == nil {
		return ErrNoPromptSurface
	}
	if h.autostart == nil {
		return fmt.Errorf("%w: autostart unavailable", ErrGrantUnsupported)
	}
	return h.prompter.Prompt(ctx,
		"Keep alarms running?",
		"Start the alarm daemon with your session so alarms ring even after the app is closed.",
		func() { h.record(CapabilityPower) },
	)
}

func (h *DesktopHost) OpenSettings(ctx context.Context) error {
	if h.prompter == nil {
		return ErrNoPromptSurface
	}
	return h.prompter.Inform(ctx,
		"Alarm permissions",
		"Run \"warpalarm permissions grant exact\" and \"warpalarm permissions grant power\" to enable reliable alarms.",
	)
}

// Grant records capability immediately.
func (h *DesktopHost) Grant(ctx context.Context, capability string) error {
	switch capability {
	case CapabilityExact:
		return h.grants.Grant(ctx, CapabilityExact)
	case CapabilityPower:
		if h.autostart == nil {
			return fmt.Errorf("%w: autostart unavailable", ErrGrantUnsupported)
		}
		if h.autostart.IsEnabled() {
			return nil
		}
		return h.autostart.Enable()
	}
	return fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
}

// record runs from a prompt answer, long after the request returned.
func (h *DesktopHost) record(capability string) {
	if err := h.Grant(context.Background(), capability); err != nil {
		h.log.Error("permission: recording %s grant: %v", capability, err)
		return
	}
	h.log.Info("permission: %s granted by user", capability)
}

// Grant records a capability on hosts that support it.
func (g *Gate) Grant(ctx context.Context, capability string) error {
	gr, ok := g.host.(Granter)
	if !ok {
		return ErrGrantUnsupported
	}
	return gr.Grant(ctx, capability)
}

var (
	_ Host    = (*DesktopHost)(nil)
	_ Granter = (*DesktopHost)(nil)
)
