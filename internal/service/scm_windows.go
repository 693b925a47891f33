//go:build windows

package service

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

type scManager struct {
	mgr *mgr.Mgr
}

type scService struct {
	svc *mgr.Service
}

// OpenSCManager connects to the service control manager. Callers close it.
func OpenSCManager() (SCManager, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service control manager: %w", err)
	}
	return &scManager{mgr: m}, nil
}

func (m *scManager) OpenService(name string) (Service, error) {
	s, err := m.mgr.OpenService(name)
	if err != nil {
		return nil, fmt.Errorf("open service %q: %w", name, ErrServiceNotFound)
	}
	return &scService{svc: s}, nil
}

func (m *scManager) CreateService(name, exePath string, cfg Config) (Service, error) {
	if existing, err := m.mgr.OpenService(name); err == nil {
		existing.Close()
		return nil, ErrServiceExists
	}
	s, err := m.mgr.CreateService(name, exePath, mgr.Config{
		DisplayName:  cfg.DisplayName,
		Description:  cfg.Description,
		StartType:    cfg.StartType,
		ServiceType:  windows.SERVICE_WIN32_OWN_PROCESS,
		ErrorControl: windows.SERVICE_ERROR_NORMAL,
	}, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("create service %q: %w", name, err)
	}
	return &scService{svc: s}, nil
}

func (m *scManager) Close() error {
	return m.mgr.Disconnect()
}

func (s *scService) Start() error {
	if err := s.svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	return nil
}

func (s *scService) Stop() error {
	if _, err := s.svc.Control(svc.Stop); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}
	return nil
}

func (s *scService) Delete() error {
	if err := s.svc.Delete(); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

func (s *scService) Status() (Status, error) {
	st, err := s.svc.Query()
	if err != nil {
		return 0, fmt.Errorf("failed to query service status: %w", err)
	}
	return Status(st.State), nil
}

func (s *scService) Close() error {
	return s.svc.Close()
}
