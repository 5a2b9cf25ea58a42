/*
Package registry tracks the live game connections and fans outbound
frames out to all of them.

A send failure is a death sentence: the connection is dropped from the
set after the broadcast pass and closed. Membership changes never block
on I/O; broadcasts work on a snapshot.
*/
package registry

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Broadcaster is what command senders need.
type Broadcaster interface {
	Broadcast(ctx context.Context, data []byte) int
	Len() int
}

// Hubber defines the gateway for game session management.
type Hubber interface {
	Broadcaster
	Register(conn Connector)
	Unregister(conn Connector) bool
	Snapshot() []Connector
	Shutdown()
}

// Interface guard
var _ Hubber = (*Hub)(nil)

type hubConfig struct {
	sendTimeout time.Duration
	parallelism int
}

type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]Connector
	config hubConfig
	logger *slog.Logger
}

func NewHub(logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		conns:  make(map[uuid.UUID]Connector),
		logger: logger,
		config: hubConfig{
			sendTimeout: 5 * time.Second,
			parallelism: runtime.GOMAXPROCS(0) * 4,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register is [IDEMPOTENT]: re-adding a member changes nothing.
func (h *Hub) Register(conn Connector) {
	h.mu.Lock()
	_, exists := h.conns[conn.GetID()]
	h.conns[conn.GetID()] = conn
	size := len(h.conns)
	h.mu.Unlock()

	if !exists {
		h.logger.Info("GAME_CONNECTION_REGISTERED",
			slog.String("conn_id", conn.GetID().String()),
			slog.String("remote", conn.Metadata().RemoteAddr),
			slog.Int("connections", size),
		)
	}
}

// Unregister removes a member if present and reports whether it was.
func (h *Hub) Unregister(conn Connector) bool {
	h.mu.Lock()
	_, exists := h.conns[conn.GetID()]
	delete(h.conns, conn.GetID())
	size := len(h.conns)
	h.mu.Unlock()

	if exists {
		h.logger.Info("GAME_CONNECTION_UNREGISTERED",
			slog.String("conn_id", conn.GetID().String()),
			slog.Int("connections", size),
		)
	}
	return exists
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) Snapshot() []Connector {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Connector, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c)
	}
	return out
}

// Broadcast sends data to every member of a snapshot taken at call time.
// Failed members are removed and closed once the pass completes. The
// result is the number of members that accepted the frame.
// Each write is bounded by the send timeout only: a caller giving up is
// not a transport failure and must not cost a game its socket.
func (h *Hub) Broadcast(ctx context.Context, data []byte) int {
	conns := h.Snapshot()
	if len(conns) == 0 {
		return 0
	}
	base := context.WithoutCancel(ctx)

	// [PARALLEL_SEND] one slow socket must not stall the others
	errs := make([]error, len(conns))
	var g errgroup.Group
	g.SetLimit(h.config.parallelism)

	for i, conn := range conns {
		i, conn := i, conn
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(base, h.config.sendTimeout)
			defer cancel()
			errs[i] = conn.Send(sendCtx, data)
			return nil
		})
	}
	_ = g.Wait()

	// [PRUNE_AFTER_PASS] membership is never mutated mid-iteration
	reached := 0
	for i, err := range errs {
		if err == nil {
			reached++
			continue
		}
		h.logger.Warn("GAME_SEND_FAILED",
			slog.String("conn_id", conns[i].GetID().String()),
			slog.Any("err", err),
		)
		h.Unregister(conns[i])
		_ = conns[i].Close()
	}

	return reached
}

// Shutdown closes and forgets every member.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[uuid.UUID]Connector)
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	h.logger.Info("GAME_REGISTRY_SHUTDOWN", slog.Int("closed", len(conns)))
}
