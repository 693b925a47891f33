//go:build windows

package server

// cleanupSocket is a no-op on Windows; the OS removes the pipe with its last handle.
func (s *Server) cleanupSocket() error {
	return nil
}
