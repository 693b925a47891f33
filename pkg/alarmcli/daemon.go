package alarmcli

import (
	"fmt"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
)

// spawnFunc is swapped in tests.
var spawnFunc = spawnDaemon

// ensureDaemon spawns the daemon when nothing answers on the local
// transport, then waits for it to come up.
func ensureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnFunc(); err != nil {
		return err
	}
	return waitForDaemon(daemonStartTimeout)
}

func waitForDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}

func isDaemonRunning() bool {
	conn, err := dial()
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
