// Package alarmcli is the JSON-RPC client the warpalarm CLI uses to talk to
// the daemon over its local socket.
package alarmcli

import (
	"context"
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/warpalarm/common"
)

// dialFunc is swapped in tests.
var dialFunc = net.Dial

// PushHandler receives ring.started and ring.stopped pushes.
type PushHandler func(method string, st common.RingStatusResult)

// Options configures a Client.
type Options struct {
	// URI selects the daemon explicitly; empty means the local default
	// transport, spawning the daemon when it is not running.
	URI string
	// OnPush receives ring pushes; nil ignores them.
	OnPush PushHandler
}

type Client struct {
	conn net.Conn
	rpc  *jrpc2.Client
}

// NewClient connects to the local daemon, starting it if needed.
func NewClient() (*Client, error) {
	return NewClientWithOptions(Options{})
}

// NewClientWithURI connects to the daemon at uri without spawning it.
func NewClientWithURI(uri string) (*Client, error) {
	return NewClientWithOptions(Options{URI: uri})
}

func NewClientWithOptions(opt Options) (*Client, error) {
	var (
		conn net.Conn
		err  error
	)
	if opt.URI != "" {
		u, perr := ParseDaemonURI(opt.URI)
		if perr != nil {
			return nil, perr
		}
		conn, err = dialURI(u)
	} else {
		if err = ensureDaemon(); err != nil {
			return nil, fmt.Errorf("error starting daemon: %w", err)
		}
		conn, err = dial()
	}
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return newClient(conn, opt.OnPush), nil
}

func newClient(conn net.Conn, onPush PushHandler) *Client {
	var opts *jrpc2.ClientOptions
	if onPush != nil {
		opts = &jrpc2.ClientOptions{
			OnNotify: func(req *jrpc2.Request) {
				var st common.RingStatusResult
				if err := req.UnmarshalParams(&st); err != nil {
					debugLog("bad %s push: %v", req.Method(), err)
					return
				}
				onPush(req.Method(), st)
			},
		}
	}
	return &Client{
		conn: conn,
		rpc:  jrpc2.NewClient(channel.Line(conn, conn), opts),
	}
}

// Close disconnects from the daemon.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// call invokes method and decodes its result into a fresh T.
func call[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &out, nil
}
