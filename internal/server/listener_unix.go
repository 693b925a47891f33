//go:build !windows

package server

import (
	"fmt"
	"net"
	"os"

	"github.com/warpdl/warpalarm/common"
)

// createListener listens on the unix socket, falling back to loopback TCP
// when the socket cannot be created.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		s.log.Info("force TCP mode enabled, using TCP listener")
		return net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	}
	_ = os.Remove(s.socketPath)
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: s.socketPath, Net: "unix"})
	if err != nil {
		s.log.Warning("unix socket %s unavailable: %v; trying TCP", s.socketPath, err)
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %w", tcpErr)
		}
		return tcpListener, nil
	}
	setSocketPermissions(s.socketPath)
	return l, nil
}
