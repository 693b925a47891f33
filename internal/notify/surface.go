package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// Surface is the external notification surface.
type Surface interface {
	Show(ctx context.Context, spec Spec) error
	Withdraw(ctx context.Context, slot int) error
}

// ActionHandler receives user taps. alarmID is decoded from the action target.
type ActionHandler func(action string, alarmID int)

// ErrBadActionKey is returned for action keys this package did not produce.
var ErrBadActionKey = errors.New("malformed action key")

// actionKey encodes an action bound to its target id, e.g. "dismiss:1001".
func actionKey(a Action) string {
	return a.Key + ":" + strconv.Itoa(a.TargetID)
}

// ParseActionKey decodes a key from actionKey back to the action name and the
// alarm id that owns the target.
func ParseActionKey(key string) (string, int, error) {
	name, rest, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrBadActionKey, key)
	}
	target, err := strconv.Atoi(rest)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrBadActionKey, key)
	}
	switch name {
	case ActionDismiss:
		return name, target - alarm.DismissActionOffset, nil
	case ActionSnooze:
		return name, target - alarm.SnoozeActionOffset, nil
	case ActionOpen:
		return name, target, nil
	}
	return "", 0, fmt.Errorf("%w: %q", ErrBadActionKey, key)
}

// LogSurface writes notifications to the log. The daemon uses it when no
// desktop notification server is reachable.
type LogSurface struct {
	log logger.Logger
}

// NewLogSurface creates a LogSurface.
func NewLogSurface(l logger.Logger) *LogSurface {
	return &LogSurface{log: l}
}

func (s *LogSurface) Show(_ context.Context, spec Spec) error {
	s.log.Info("notification[%d] %s: %s", spec.Slot, spec.Title, spec.Body)
	return nil
}

func (s *LogSurface) Withdraw(_ context.Context, slot int) error {
	s.log.Info("notification[%d] withdrawn", slot)
	return nil
}

// Multi shows on every surface and succeeds if at least one does.
type Multi []Surface

func (m Multi) Show(ctx context.Context, spec Spec) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(ctx, spec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(m) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (m Multi) Withdraw(ctx context.Context, slot int) error {
	var errs []error
	for _, s := range m {
		if err := s.Withdraw(ctx, slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
