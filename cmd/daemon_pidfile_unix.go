//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

// isProcessRunning uses signal 0 to check that pid exists.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
