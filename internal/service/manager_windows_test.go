//go:build windows

package service

import (
	"errors"
	"testing"
)

type fakeService struct {
	status  Status
	started bool
	stopped bool
	deleted bool
}

func (f *fakeService) Start() error            { f.started = true; f.status = StatusRunning; return nil }
func (f *fakeService) Stop() error             { f.stopped = true; f.status = StatusStopped; return nil }
func (f *fakeService) Delete() error           { f.deleted = true; return nil }
func (f *fakeService) Status() (Status, error) { return f.status, nil }
func (f *fakeService) Close() error            { return nil }

type fakeSCM struct {
	services map[string]*fakeService
	created  Config
	exePath  string
}

func newFakeSCM() *fakeSCM {
	return &fakeSCM{services: map[string]*fakeService{}}
}

func (f *fakeSCM) OpenService(name string) (Service, error) {
	s, ok := f.services[name]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeSCM) CreateService(name, exePath string, cfg Config) (Service, error) {
	if _, ok := f.services[name]; ok {
		return nil, ErrServiceExists
	}
	f.created, f.exePath = cfg, exePath
	s := &fakeService{status: StatusStopped}
	f.services[name] = s
	return s, nil
}

func (f *fakeSCM) Close() error { return nil }

func TestManager_InstallPassesDaemonArgs(t *testing.T) {
	scm := newFakeSCM()
	m := NewManager(scm)
	cfg := Config{DisplayName: "WarpAlarm", StartType: StartTypeAutomatic, Args: []string{"daemon"}}
	if err := m.Install("warpalarm", `C:\warpalarm.exe`, cfg); err != nil {
		t.Fatal(err)
	}
	if scm.exePath != `C:\warpalarm.exe` || len(scm.created.Args) != 1 || scm.created.Args[0] != "daemon" {
		t.Fatalf("created %q with %+v", scm.exePath, scm.created)
	}
	if err := m.Install("warpalarm", `C:\warpalarm.exe`, cfg); !errors.Is(err, ErrServiceExists) {
		t.Fatalf("second install: %v", err)
	}
}

func TestManager_StartStop(t *testing.T) {
	scm := newFakeSCM()
	scm.services["warpalarm"] = &fakeService{status: StatusStopped}
	m := NewManager(scm)

	if err := m.Stop("warpalarm"); !errors.Is(err, ErrServiceNotRunning) {
		t.Fatalf("stop while stopped: %v", err)
	}
	if err := m.Start("warpalarm"); err != nil {
		t.Fatal(err)
	}
	if err := m.Start("warpalarm"); !errors.Is(err, ErrServiceAlreadyRunning) {
		t.Fatalf("start while running: %v", err)
	}
	st, err := m.Status("warpalarm")
	if err != nil || st != StatusRunning {
		t.Fatalf("status = %v, %v", st, err)
	}
	if err := m.Stop("warpalarm"); err != nil {
		t.Fatal(err)
	}
}

func TestManager_UninstallStopsFirst(t *testing.T) {
	scm := newFakeSCM()
	s := &fakeService{status: StatusRunning}
	scm.services["warpalarm"] = s
	if err := NewManager(scm).Uninstall("warpalarm"); err != nil {
		t.Fatal(err)
	}
	if !s.stopped || !s.deleted {
		t.Fatalf("service = %+v", s)
	}
	if err := NewManager(newFakeSCM()).Uninstall("warpalarm"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("uninstall missing: %v", err)
	}
}

func TestStatusString(t *testing.T) {
	if StatusRunning.String() != "Running" || Status(42).String() != "Unknown (42)" {
		t.Fatal("unexpected status names")
	}
}
