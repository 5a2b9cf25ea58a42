package service

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const rosterJSON = `{
	"playerToken": "tok-1",
	"players": [
		{"name": "alpha", "teamId": 2, "nucleusHash": "n-a", "hardwareName": "PC"},
		{"name": "bravo", "teamId": 2, "nucleusHash": "n-b", "hardwareName": "PS4"},
		{"name": "charlie", "teamId": 3, "nucleusHash": "n-c", "hardwareName": "X1"}
	]
}`

// fakeGame stands in for a game client socket. When reply is set, every
// command written to it is answered asynchronously through the bridge.
type fakeGame struct {
	mu       sync.Mutex
	commands [][]byte
	failWith error
	reply    func(cmd []byte)
}

func (g *fakeGame) WriteMessage(_ int, data []byte) error {
	g.mu.Lock()
	if g.failWith != nil {
		g.mu.Unlock()
		return g.failWith
	}
	g.commands = append(g.commands, append([]byte(nil), data...))
	reply := g.reply
	g.mu.Unlock()

	if reply != nil {
		go reply(data)
	}
	return nil
}

func (g *fakeGame) SetWriteDeadline(time.Time) error { return nil }
func (g *fakeGame) Close() error                     { return nil }
func (g *fakeGame) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7777} }

func (g *fakeGame) received() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.commands)
}

type mockFanout struct{ mock.Mock }

func (m *mockFanout) Publish(_ context.Context, typeName string, value map[string]any) bool {
	return m.Called(typeName, value).Bool(0)
}

func (m *mockFanout) Status(now time.Time) model.FanoutStatus {
	return m.Called(now).Get(0).(model.FanoutStatus)
}

type harness struct {
	catalog    *liveapi.Catalog
	hub        *registry.Hub
	store      *store.Store
	fanout     *mockFanout
	correlator *Correlator
	commander  *Commander
	bridge     *Bridge
	sessions   *SessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		catalog:    liveapi.Default(),
		hub:        registry.NewHub(discard, registry.WithSendTimeout(time.Second)),
		store:      store.New(store.NewMemoryBackend(), discard),
		fanout:     new(mockFanout),
		correlator: NewCorrelator(),
	}
	h.fanout.On("Publish", mock.Anything, mock.Anything).Return(true).Maybe()

	h.commander = NewCommander(liveapi.NewBuilder(h.catalog, "psk"), h.hub, discard)
	h.bridge = NewBridge(h.catalog, liveapi.NewDecoder(h.catalog, discard), h.store, h.fanout, h.correlator, discard)
	h.sessions = NewSessionService(h.hub)

	t.Cleanup(h.hub.Shutdown)
	return h
}

func (h *harness) attach(g *fakeGame) registry.Connector {
	return h.sessions.Attach(g, registry.ConnectMetadata{RemoteAddr: "127.0.0.1:7777", ConnectedAt: time.Now()})
}

func (h *harness) frame(t *testing.T, kind liveapi.Kind, payloadJSON string) []byte {
	t.Helper()
	f, err := h.catalog.Frame(kind.FullName(), []byte(payloadJSON))
	require.NoError(t, err)
	return f
}

func (h *harness) requester(opts ...RequesterOption) *Requester {
	return NewRequester(h.commander, h.store, h.correlator, discard, opts...)
}

// replyWith answers every command with frame.
func (h *harness) replyWith(frame []byte) func([]byte) {
	return func([]byte) {
		time.Sleep(10 * time.Millisecond)
		_ = h.bridge.HandleFrame(context.Background(), frame)
	}
}
