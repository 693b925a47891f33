// Package server exposes the alarm engine over JSON-RPC 2.0: line-delimited
// on a local socket for the CLI, and over HTTP and websocket for other
// front ends.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/warpdl/warpalarm/pkg/logger"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns caps concurrent local connections.
const DefaultMaxConns = 64

// Server serves the method table to CLI clients on a unix socket (a named
// pipe on Windows), falling back to loopback TCP.
type Server struct {
	log        logger.Logger
	methods    handler.Map
	notifier   *RPCNotifier
	port       int
	socketPath string
	maxConns   int

	mu       sync.Mutex
	listener net.Listener
	conns    map[*jrpc2.Server]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a Server. Pushes broadcast by notifier reach local
// clients as well as websocket ones.
func NewServer(l logger.Logger, methods handler.Map, notifier *RPCNotifier, socketPath string, port int) *Server {
	return &Server{
		log:        l,
		methods:    methods,
		notifier:   notifier,
		port:       port,
		socketPath: socketPath,
		maxConns:   DefaultMaxConns,
		conns:      make(map[*jrpc2.Server]struct{}),
	}
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens and accepts connections until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	l, err := s.createListener()
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is canceled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	l = netutil.LimitListener(l, s.maxConns)
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("rpc: listening on %s", l.Addr())

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warning("rpc: accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})

	s.mu.Lock()
	s.conns[srv] = struct{}{}
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier.Register(srv)
	}

	err := srv.Start(channel.Line(conn, conn)).Wait()

	if s.notifier != nil {
		s.notifier.Unregister(srv)
	}
	s.mu.Lock()
	delete(s.conns, srv)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Warning("rpc: connection ended: %v", err)
	}
}

// Shutdown closes the listener and every open connection, then removes
// the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warning("rpc: closing listener: %v", err)
		}
		s.listener = nil
	}
	conns := make([]*jrpc2.Server, 0, len(s.conns))
	for srv := range s.conns {
		conns = append(conns, srv)
	}
	s.mu.Unlock()

	for _, srv := range conns {
		srv.Stop()
	}
	s.wg.Wait()

	if err := s.cleanupSocket(); err != nil {
		s.log.Warning("rpc: removing socket: %v", err)
	}
	return nil
}
