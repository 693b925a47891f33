//go:build windows

package service

import (
	"errors"
	"fmt"
)

var (
	ErrServiceExists         = errors.New("service already exists")
	ErrServiceNotFound       = errors.New("service not found")
	ErrServiceAlreadyRunning = errors.New("service is already running")
	ErrServiceNotRunning     = errors.New("service is not running")
)

// Start types, matching SERVICE_START_TYPE.
const (
	StartTypeAutomatic uint32 = 2
	StartTypeManual    uint32 = 3
	StartTypeDisabled  uint32 = 4
)

// Status mirrors SERVICE_STATUS dwCurrentState.
type Status uint32

const (
	StatusStopped         Status = 1
	StatusStartPending    Status = 2
	StatusStopPending     Status = 3
	StatusRunning         Status = 4
	StatusContinuePending Status = 5
	StatusPausePending    Status = 6
	StatusPaused          Status = 7
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusStartPending:
		return "Start Pending"
	case StatusStopPending:
		return "Stop Pending"
	case StatusRunning:
		return "Running"
	case StatusContinuePending:
		return "Continue Pending"
	case StatusPausePending:
		return "Pause Pending"
	case StatusPaused:
		return "Paused"
	}
	return fmt.Sprintf("Unknown (%d)", uint32(s))
}

// Config describes the service to create.
type Config struct {
	DisplayName string
	Description string
	StartType   uint32
	// Args are passed to the executable when the service starts.
	Args []string
}

// SCManager is the part of the service control manager the Manager uses.
type SCManager interface {
	OpenService(name string) (Service, error)
	CreateService(name, exePath string, cfg Config) (Service, error)
	Close() error
}

// Service is an installed service handle.
type Service interface {
	Start() error
	Stop() error
	Delete() error
	Status() (Status, error)
	Close() error
}

// Manager installs and controls the daemon service.
type Manager struct {
	scm SCManager
}

func NewManager(scm SCManager) *Manager {
	return &Manager{scm: scm}
}

// Install registers the service. It fails with ErrServiceExists when a
// service of that name is already installed.
func (m *Manager) Install(name, exePath string, cfg Config) error {
	s, err := m.scm.CreateService(name, exePath, cfg)
	if err != nil {
		return err
	}
	return s.Close()
}

// Uninstall stops the service if it runs, then deletes it.
func (m *Manager) Uninstall(name string) error {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Status()
	if err != nil {
		return err
	}
	if st == StatusRunning {
		if err := s.Stop(); err != nil {
			return err
		}
	}
	return s.Delete()
}

func (m *Manager) Start(name string) error {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Status()
	if err != nil {
		return err
	}
	if st == StatusRunning {
		return ErrServiceAlreadyRunning
	}
	return s.Start()
}

func (m *Manager) Stop(name string) error {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Status()
	if err != nil {
		return err
	}
	if st == StatusStopped {
		return ErrServiceNotRunning
	}
	return s.Stop()
}

func (m *Manager) Status(name string) (Status, error) {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return s.Status()
}
