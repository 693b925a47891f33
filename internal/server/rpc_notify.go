package server

import (
	"context"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/ring"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const pushTimeout = 2 * time.Second

// RPCNotifier maintains the set of connected jrpc2 servers and broadcasts
// push notifications to all of them.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
}

func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
	}
}

func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Broadcast pushes method to every registered server. Servers that fail to
// receive are dropped.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err := srv.Notify(ctx, method, params)
		cancel()
		if err != nil {
			n.log.Warning("rpc push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}
	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

// OnRingEvent forwards ringing session transitions as ring.started and
// ring.stopped pushes. It is meant for ring.Controller.Subscribe.
func (n *RPCNotifier) OnRingEvent(ev ring.Event) {
	st := RingStatus(ev.Status)
	switch ev.Kind {
	case ring.EventStarted:
		n.Broadcast(common.NotifyRingStarted, st)
	case ring.EventStopped:
		st.State = common.RingStateIdle
		st.Reason = ev.Reason
		n.Broadcast(common.NotifyRingStopped, st)
	}
}
