//go:build windows

package cmd

import "github.com/urfave/cli"

// getPlatformCommands returns Windows-specific commands.
func getPlatformCommands() []cli.Command {
	return []cli.Command{
		serviceCommand(),
	}
}
