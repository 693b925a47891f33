// Package power keeps the machine awake while an alarm rings.
package power

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/warpalarm/internal/bus"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// Inhibitor blocks sleep until the returned closer is closed.
type Inhibitor interface {
	Inhibit(why string) (io.Closer, error)
}

// LogindInhibitor takes a systemd-logind "block" inhibitor lock.
type LogindInhibitor struct {
	conn *dbus.Conn
	who  string
}

// NewLogindInhibitor connects to the system bus.
func NewLogindInhibitor(who string) (*LogindInhibitor, error) {
	conn, err := bus.System()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}
	if !bus.NameHasOwner(conn, "org.freedesktop.login1") {
		conn.Close()
		return nil, fmt.Errorf("logind is not running")
	}
	return &LogindInhibitor{conn: conn, who: who}, nil
}

func (l *LogindInhibitor) Inhibit(why string) (io.Closer, error) {
	var fd dbus.UnixFD
	obj := l.conn.Object("org.freedesktop.login1", "/org/freedesktop/login1")
	err := obj.Call("org.freedesktop.login1.Manager.Inhibit", 0, "sleep:idle", l.who, why, "block").Store(&fd)
	if err != nil {
		return nil, fmt.Errorf("inhibit: %w", err)
	}
	return os.NewFile(uintptr(fd), "logind-inhibit"), nil
}

func (l *LogindInhibitor) Close() error {
	return l.conn.Close()
}

// NopInhibitor is used where no inhibit service exists.
type NopInhibitor struct{}

func (NopInhibitor) Inhibit(string) (io.Closer, error) { return io.NopCloser(nil), nil }

// Lock is a held wake lock. It releases itself after its timeout.
type Lock struct {
	closer io.Closer
	timer  *time.Timer
	once   sync.Once
	log    logger.Logger
	why    string
}

// Acquire takes a wake lock that is released by Release or after timeout,
// whichever comes first.
func Acquire(inh Inhibitor, why string, timeout time.Duration, l logger.Logger) (*Lock, error) {
	c, err := inh.Inhibit(why)
	if err != nil {
		return nil, err
	}
	k := &Lock{closer: c, log: l, why: why}
	k.timer = time.AfterFunc(timeout, func() {
		l.Warning("wake lock %q held for %s, releasing", why, timeout)
		k.release()
	})
	return k, nil
}

// Release drops the lock. Safe to call more than once.
func (k *Lock) Release() {
	if k == nil {
		return
	}
	k.timer.Stop()
	k.release()
}

func (k *Lock) release() {
	k.once.Do(func() {
		if err := k.closer.Close(); err != nil {
			k.log.Warning("releasing wake lock %q: %v", k.why, err)
		}
	})
}
