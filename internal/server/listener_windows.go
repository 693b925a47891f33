//go:build windows

package server

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
	"github.com/warpdl/warpalarm/common"
)

// pipeSecurityDescriptor grants full control to SYSTEM, Administrators and
// the creator owner only.
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

// createListener listens on the named pipe, falling back to loopback TCP.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		s.log.Info("force TCP mode enabled, using TCP listener")
		return net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	}
	l, err := winio.ListenPipe(common.PipePath(), &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	})
	if err != nil {
		s.log.Warning("named pipe creation failed: %v; falling back to TCP", err)
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %w", tcpErr)
		}
		return tcpListener, nil
	}
	return l, nil
}
