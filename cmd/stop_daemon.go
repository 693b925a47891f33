package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func stopDaemon(ctx *cli.Context) error {
	out, errOut := outWriter(ctx), errWriter(ctx)
	pid, err := ReadPidFile()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "Daemon is not running (PID file not found)")
			return nil
		}
		fmt.Fprintf(errOut, "Error reading PID file: %v\n", err)
		return nil
	}
	if !isProcessRunning(pid) {
		fmt.Fprintf(out, "Daemon is not running (stale PID %d)\n", pid)
		_ = RemovePidFile()
		return nil
	}

	fmt.Fprintf(out, "Stopping daemon (PID %d)...\n", pid)
	if err := killDaemon(pid); err != nil {
		fmt.Fprintf(errOut, "Error stopping daemon: %v\n", err)
		return nil
	}
	// the daemon removes its PID file on the way out
	fmt.Fprintln(out, "Daemon stopped successfully")
	return nil
}
