//go:build !windows

package cmd

import (
	"context"

	"github.com/urfave/cli"
	runner "github.com/warpdl/warpalarm/internal/daemon"
)

// getPlatformCommands returns platform-specific commands; there are none
// outside Windows.
func getPlatformCommands() []cli.Command {
	return nil
}

// runAsService reports false: only Windows has a service manager to hand
// the daemon to.
func runAsService(*runner.Runner, func(context.Context) error) (bool, error) {
	return false, nil
}
