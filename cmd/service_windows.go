//go:build windows

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	runner "github.com/warpdl/warpalarm/internal/daemon"
	"github.com/warpdl/warpalarm/internal/service"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
)

var ErrRequiresAdmin = errors.New("this operation requires administrator privileges")

// swapped in tests
var (
	isAdminFunc       = isAdmin
	openSCManager     = service.OpenSCManager
	isWindowsService  = svc.IsWindowsService
	runServiceHandler = svc.Run
)

func isAdmin() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)
	isMember, err := windows.Token(0).IsMember(sid)
	return err == nil && isMember
}

func serviceCommand() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "manages the WarpAlarm Windows service",
		Subcommands: []cli.Command{
			{Name: "install", Usage: "installs the daemon as a service that starts with Windows", Action: serviceInstall},
			{Name: "uninstall", Usage: "removes the service", Action: serviceUninstall},
			{Name: "start", Usage: "starts the service", Action: serviceStart},
			{Name: "stop", Usage: "stops the service", Action: serviceStop},
			{Name: "status", Usage: "shows the service status", Action: serviceStatus},
		},
	}
}

// withManager runs fn against a connected service manager.
func withManager(needAdmin bool, fn func(*service.Manager) error) error {
	if needAdmin && !isAdminFunc() {
		return ErrRequiresAdmin
	}
	scm, err := openSCManager()
	if err != nil {
		return err
	}
	defer scm.Close()
	return fn(service.NewManager(scm))
}

func serviceErr(err error) error {
	name := runner.DefaultName
	switch {
	case errors.Is(err, service.ErrServiceExists):
		return fmt.Errorf("service '%s' is already installed", name)
	case errors.Is(err, service.ErrServiceNotFound):
		return fmt.Errorf("service '%s' is not installed", name)
	case errors.Is(err, service.ErrServiceAlreadyRunning):
		return fmt.Errorf("service '%s' is already running", name)
	case errors.Is(err, service.ErrServiceNotRunning):
		return fmt.Errorf("service '%s' is not running", name)
	}
	return err
}

func serviceInstall(ctx *cli.Context) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	err = withManager(true, func(m *service.Manager) error {
		if err := m.Install(runner.DefaultName, exePath, service.Config{
			DisplayName: runner.DefaultDisplayName,
			Description: "Rings scheduled alarms.",
			StartType:   service.StartTypeAutomatic,
			Args:        []string{"daemon"},
		}); err != nil {
			return err
		}
		if err := service.RegisterEventSource(runner.DefaultName); err != nil {
			_ = m.Uninstall(runner.DefaultName)
			return fmt.Errorf("failed to register event source: %w", err)
		}
		return nil
	})
	if err != nil {
		return serviceErr(err)
	}
	fmt.Fprintf(outWriter(ctx), "Service '%s' installed successfully\n", runner.DefaultName)
	return nil
}

func serviceUninstall(ctx *cli.Context) error {
	err := withManager(true, func(m *service.Manager) error {
		return m.Uninstall(runner.DefaultName)
	})
	if err != nil {
		return serviceErr(err)
	}
	_ = service.RemoveEventSource(runner.DefaultName)
	fmt.Fprintf(outWriter(ctx), "Service '%s' uninstalled successfully\n", runner.DefaultName)
	return nil
}

func serviceStart(ctx *cli.Context) error {
	if err := withManager(true, func(m *service.Manager) error { return m.Start(runner.DefaultName) }); err != nil {
		return serviceErr(err)
	}
	fmt.Fprintf(outWriter(ctx), "Service '%s' started successfully\n", runner.DefaultName)
	return nil
}

func serviceStop(ctx *cli.Context) error {
	if err := withManager(true, func(m *service.Manager) error { return m.Stop(runner.DefaultName) }); err != nil {
		return serviceErr(err)
	}
	fmt.Fprintf(outWriter(ctx), "Service '%s' stopped successfully\n", runner.DefaultName)
	return nil
}

func serviceStatus(ctx *cli.Context) error {
	var st service.Status
	err := withManager(false, func(m *service.Manager) error {
		var err error
		st, err = m.Status(runner.DefaultName)
		return err
	})
	if err != nil {
		return serviceErr(err)
	}
	fmt.Fprintf(outWriter(ctx), "Service '%s': %s\n", runner.DefaultName, st)
	return nil
}

// serviceRunner adapts the daemon runner to the service handler.
type serviceRunner struct {
	r    *runner.Runner
	body func(context.Context) error
}

func (s serviceRunner) Start(ctx context.Context) error { return s.r.Run(ctx, s.body) }
func (s serviceRunner) IsRunning() bool                 { return s.r.IsRunning() }

// Shutdown tolerates the runner having already stopped on cancellation.
func (s serviceRunner) Shutdown() error {
	if err := s.r.Shutdown(); err != nil && !errors.Is(err, runner.ErrNotRunning) {
		return err
	}
	return nil
}

// runAsService hands the daemon to the service manager when the process was
// started by it.
func runAsService(r *runner.Runner, body func(context.Context) error) (bool, error) {
	inService, err := isWindowsService()
	if err != nil || !inService {
		return false, err
	}
	var elog service.EventLogger
	if l, err := service.NewWindowsEventLogger(runner.DefaultName); err == nil {
		elog = l
		defer l.Close()
	}
	return true, runServiceHandler(runner.DefaultName, service.NewHandler(serviceRunner{r: r, body: body}, elog))
}
