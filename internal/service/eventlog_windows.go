//go:build windows

package service

import (
	"fmt"
	"log"

	"golang.org/x/sys/windows/svc/eventlog"
)

// EventLogger receives service lifecycle messages.
type EventLogger interface {
	Info(msg string) error
	Warning(msg string) error
	Error(msg string) error
	Close() error
}

const eventSources = eventlog.Error | eventlog.Warning | eventlog.Info

// WindowsEventLogger writes to the Windows Event Log.
type WindowsEventLogger struct {
	log *eventlog.Log
}

// NewWindowsEventLogger opens the event log for source, registering the
// source first if needed.
func NewWindowsEventLogger(source string) (*WindowsEventLogger, error) {
	_ = eventlog.InstallAsEventCreate(source, eventSources)
	elog, err := eventlog.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &WindowsEventLogger{log: elog}, nil
}

func (w *WindowsEventLogger) Info(msg string) error    { return w.log.Info(1, msg) }
func (w *WindowsEventLogger) Warning(msg string) error { return w.log.Warning(2, msg) }
func (w *WindowsEventLogger) Error(msg string) error   { return w.log.Error(3, msg) }
func (w *WindowsEventLogger) Close() error             { return w.log.Close() }

// ConsoleEventLogger is used outside the service manager.
type ConsoleEventLogger struct {
	logger *log.Logger
}

func NewConsoleEventLogger(l *log.Logger) *ConsoleEventLogger {
	if l == nil {
		l = log.Default()
	}
	return &ConsoleEventLogger{logger: l}
}

func (c *ConsoleEventLogger) Info(msg string) error {
	c.logger.Printf("[INFO] %s", msg)
	return nil
}

func (c *ConsoleEventLogger) Warning(msg string) error {
	c.logger.Printf("[WARNING] %s", msg)
	return nil
}

func (c *ConsoleEventLogger) Error(msg string) error {
	c.logger.Printf("[ERROR] %s", msg)
	return nil
}

func (c *ConsoleEventLogger) Close() error { return nil }

// RegisterEventSource registers source with the Windows Event Log.
func RegisterEventSource(source string) error {
	return eventlog.InstallAsEventCreate(source, eventSources)
}

// RemoveEventSource unregisters source.
func RemoveEventSource(source string) error {
	return eventlog.Remove(source)
}
