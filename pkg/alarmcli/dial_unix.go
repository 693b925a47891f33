//go:build !windows

package alarmcli

import (
	"fmt"
	"net"

	"github.com/warpdl/warpalarm/common"
)

// dial connects over the unix socket, falling back to TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	path := common.SocketPath()
	debugLog("connecting via unix socket %s", path)
	conn, unixErr := dialFunc("unix", path)
	if unixErr == nil {
		return conn, nil
	}
	debugLog("unix socket failed: %v, falling back to TCP", unixErr)
	conn, err := dialFunc("tcp", tcpAddress())
	if err != nil {
		return nil, fmt.Errorf("unix socket error: %v; tcp error: %w", unixErr, err)
	}
	return conn, nil
}

func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemeUnix:
		conn, err := dialFunc("unix", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("unix socket connection failed: %w", err)
		}
		return conn, nil
	case SchemeTCP:
		conn, err := dialFunc("tcp", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("tcp connection failed: %w", err)
		}
		return conn, nil
	case SchemePipe:
		return nil, ErrPipeNotSupported
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
}
