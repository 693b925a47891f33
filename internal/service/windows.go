//go:build windows

// Package service runs the alarm daemon under the Windows Service Control
// Manager, so alarms keep firing without a logged-in console.
package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/windows/svc"
)

const acceptedCommands = svc.AcceptStop | svc.AcceptShutdown

// startGrace is how long Execute waits for the runner to fail fast before
// reporting Running.
const startGrace = 50 * time.Millisecond

// Runner is the daemon lifecycle the handler drives.
type Runner interface {
	// Start blocks until ctx is canceled or the daemon fails.
	Start(ctx context.Context) error
	Shutdown() error
	IsRunning() bool
}

// Handler implements svc.Handler.
type Handler struct {
	runner Runner
	log    EventLogger
}

// NewHandler creates a handler. A nil logger logs to the console.
func NewHandler(runner Runner, l EventLogger) *Handler {
	if l == nil {
		l = NewConsoleEventLogger(nil)
	}
	return &Handler{runner: runner, log: l}
}

// Execute reports StartPending, Running, StopPending and Stopped in turn.
// Service start arguments are ignored; the daemon reads its config file.
func (h *Handler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	status <- svc.Status{State: svc.StartPending}
	_ = h.log.Info("WarpAlarm service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.runner.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = h.log.Error("WarpAlarm service failed to start: " + err.Error())
			status <- svc.Status{State: svc.Stopped}
			return false, 1
		}
	case <-time.After(startGrace):
	}

	status <- svc.Status{State: svc.Running, Accepts: acceptedCommands}
	_ = h.log.Info("WarpAlarm service running")

	for {
		select {
		case err := <-errCh:
			// the daemon stopped on its own
			if err != nil && !errors.Is(err, context.Canceled) {
				_ = h.log.Error("WarpAlarm daemon exited: " + err.Error())
				status <- svc.Status{State: svc.Stopped}
				return false, 1
			}
			status <- svc.Status{State: svc.Stopped}
			return false, 0
		case req, ok := <-requests:
			if !ok {
				return false, 0
			}
			switch req.Cmd {
			case svc.Interrogate:
				status <- req.CurrentStatus
			case svc.Stop, svc.Shutdown:
				return h.stop(status, cancel)
			}
		}
	}
}

func (h *Handler) stop(status chan<- svc.Status, cancel context.CancelFunc) (bool, uint32) {
	_ = h.log.Info("WarpAlarm service stopping")
	status <- svc.Status{State: svc.StopPending}
	cancel()
	if h.runner.IsRunning() {
		if err := h.runner.Shutdown(); err != nil {
			_ = h.log.Error("WarpAlarm service shutdown: " + err.Error())
			status <- svc.Status{State: svc.Stopped}
			return false, 1
		}
	}
	status <- svc.Status{State: svc.Stopped}
	return false, 0
}
