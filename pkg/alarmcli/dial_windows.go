//go:build windows

package alarmcli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/warpdl/warpalarm/common"
)

// dialPipeFunc is swapped in tests.
var dialPipeFunc = dialPipeImpl

func dialPipeImpl(path string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial connects over the named pipe, falling back to TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	path := common.PipePath()
	debugLog("connecting via named pipe %s", path)
	conn, pipeErr := dialPipeFunc(path, common.DefaultDialTimeout)
	if pipeErr == nil {
		return conn, nil
	}
	debugLog("named pipe failed: %v, falling back to TCP", pipeErr)
	conn, err := dialFunc("tcp", tcpAddress())
	if err != nil {
		return nil, fmt.Errorf("named pipe error: %v; tcp error: %w", pipeErr, err)
	}
	return conn, nil
}

func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemePipe:
		conn, err := dialPipeFunc(uri.Address, common.DefaultDialTimeout)
		if err != nil {
			return nil, fmt.Errorf("named pipe connection failed: %w", err)
		}
		return conn, nil
	case SchemeTCP:
		conn, err := dialFunc("tcp", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("tcp connection failed: %w", err)
		}
		return conn, nil
	case SchemeUnix:
		return nil, ErrUnixNotSupported
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
}
