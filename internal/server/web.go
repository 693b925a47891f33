package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// WebConfig configures the HTTP endpoint.
type WebConfig struct {
	// Secret is the bearer token. Empty disables /jsonrpc and /jsonrpc/ws.
	Secret string
	// ListenAll binds 0.0.0.0 instead of loopback.
	ListenAll bool
	Port      int
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// WebServer serves /jsonrpc (HTTP bridge), /jsonrpc/ws (websocket with
// ring pushes) and /metrics.
type WebServer struct {
	cfg      WebConfig
	log      logger.Logger
	methods  handler.Map
	notifier *RPCNotifier
	bridge   jhttp.Bridge
	server   *http.Server
	closed   bool
	mu       sync.Mutex
}

func NewWebServer(l logger.Logger, methods handler.Map, notifier *RPCNotifier, cfg WebConfig) *WebServer {
	ws := &WebServer{cfg: cfg, log: l, methods: methods, notifier: notifier}
	if cfg.Secret != "" {
		ws.bridge = jhttp.NewBridge(methods, nil)
	}
	return ws
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	if s.cfg.Secret != "" {
		mux.Handle("/jsonrpc", requireToken(s.cfg.Secret, s.bridge))
		mux.Handle("/jsonrpc/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.handleWS)))
	}
	if s.cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("web: websocket accept: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})
	if s.notifier != nil {
		s.notifier.Register(srv)
		defer s.notifier.Unregister(srv)
	}
	if err := srv.Start(ch).Wait(); err != nil {
		s.log.Info("web: websocket closed: %v", err)
	}
}

func (s *WebServer) addr() string {
	host := common.TCPHost
	if s.cfg.ListenAll {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, fmt.Sprint(s.cfg.Port))
}

// Start listens and serves until Shutdown.
func (s *WebServer) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("web: listening on %s", srv.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server and the bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.cfg.Secret != "" {
		s.bridge.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
