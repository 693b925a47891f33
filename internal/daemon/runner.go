// Package daemon provides the lifecycle runner for the alarm daemon:
// single-instance locking, blocking until shutdown, and a bounded
// shutdown hook.
package daemon

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running runner.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrLocked is returned when another process holds the instance lock.
	ErrLocked = errors.New("another daemon instance holds the lock")

	// ErrNotRunning is returned when Shutdown() is called on a stopped runner.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

const (
	// DefaultName names the daemon in logs and the autostart entry.
	DefaultName = "warpalarm"

	// DefaultDisplayName is the human-readable daemon name.
	DefaultDisplayName = "WarpAlarm"

	// LockFileName is created in the config directory.
	LockFileName = "daemon.lock"
)

// Config holds the configuration for the daemon runner.
type Config struct {
	Name        string
	DisplayName string

	// LockPath is the instance lock file. Empty disables locking.
	LockPath string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	// Lock takes the exclusive instance lock. If nil, lockFile is used.
	Lock func(path string) (io.Closer, error)

	// ShutdownFunc is called during shutdown to clean up resources.
	ShutdownFunc func() error
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config  *Config
	deps    *Dependencies
	running bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	lock    io.Closer
}

// New creates a runner. Nil config or deps get defaults.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
	}
}

func applyConfigDefaults(config *Config) *Config {
	if config == nil {
		return &Config{
			Name:        DefaultName,
			DisplayName: DefaultDisplayName,
		}
	}
	return config
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.Lock == nil {
		deps.Lock = lockFile
	}
	return deps
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Start takes the instance lock and blocks until ctx is canceled or
// Shutdown is called.
func (r *Runner) Start(ctx context.Context) error {
	return r.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

// Run takes the instance lock and runs fn while holding it. The context
// passed to fn is canceled by Shutdown.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, r.cancel = context.WithCancel(ctx)

	if r.config.LockPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.config.LockPath), 0o700); err != nil {
			r.mu.Unlock()
			return err
		}
		lock, err := r.deps.Lock(r.config.LockPath)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		r.lock = lock
	}
	r.running = true
	r.mu.Unlock()

	err := fn(ctx)

	r.cleanupOnStop()
	return err
}

func (r *Runner) cleanupOnStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.releaseLock()
}

// releaseLock drops the instance lock. Caller must hold the mutex.
func (r *Runner) releaseLock() {
	if r.lock != nil {
		_ = r.lock.Close()
		r.lock = nil
	}
}

// Shutdown runs the shutdown hook and stops the runner.
func (r *Runner) Shutdown() error {
	if err := r.validateRunning(); err != nil {
		return err
	}
	if err := r.executeShutdownFunc(); err != nil {
		return err
	}
	r.performShutdown()
	return nil
}

func (r *Runner) validateRunning() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return ErrNotRunning
	}
	return nil
}

func (r *Runner) executeShutdownFunc() error {
	if r.deps.ShutdownFunc == nil {
		return nil
	}
	if r.config.ShutdownTimeout > 0 {
		return r.executeWithTimeout(r.deps.ShutdownFunc, r.config.ShutdownTimeout)
	}
	// Shutdown proceeds regardless of cleanup errors.
	_ = r.deps.ShutdownFunc()
	return nil
}

func (r *Runner) executeWithTimeout(fn func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		r.forceStop()
		return ErrShutdownTimeout
	}
}

func (r *Runner) forceStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) performShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
	r.releaseLock()
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
