//go:build !windows

package server

import "os"

// cleanupSocket removes the unix socket file. A missing file is not an error.
func (s *Server) cleanupSocket() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
