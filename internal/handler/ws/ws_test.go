package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
	wsmarshaller "github.com/webitel/liveapi-bridge/internal/handler/marshaller/ws"
	"github.com/webitel/liveapi-bridge/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const topic = "apexlegends"

// sharedSource hands out the one in-process channel; closing a
// subscriber must not close it for everyone.
type sharedSource struct{ ch *gochannel.GoChannel }

type nopCloseSubscriber struct{ message.Subscriber }

func (nopCloseSubscriber) Close() error { return nil }

func (s sharedSource) Subscriber(string, bool) (message.Subscriber, error) {
	return nopCloseSubscriber{s.ch}, nil
}

type stack struct {
	hub    *registry.Hub
	store  *store.Store
	fanout *pubsub.Dispatcher
	game   *httptest.Server
	events *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()

	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ch.Close() })

	catalog := liveapi.Default()
	s := &stack{
		hub:    registry.NewHub(discard),
		store:  store.New(store.NewMemoryBackend(), discard),
		fanout: pubsub.NewDispatcher(ch, topic, 30*time.Second, discard),
	}
	bridge := service.NewBridge(catalog, liveapi.NewDecoder(catalog, discard), s.store, s.fanout, service.NewCorrelator(), discard)

	s.game = httptest.NewServer(NewGameHandler(discard, service.NewSessionService(s.hub), bridge, 1<<20))
	s.events = httptest.NewServer(NewEventsHandler(discard, pubsub.NewEventStream(sharedSource{ch}, topic)))
	t.Cleanup(s.game.Close)
	t.Cleanup(s.events.Close)
	t.Cleanup(s.hub.Shutdown)
	return s
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGameHandler_IngestsFrames(t *testing.T) {
	s := newStack(t)
	game := dial(t, s.game)

	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, game.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, game.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xff}))

	frame, err := liveapi.Default().Frame(liveapi.KindGameStateChanged.FullName(), []byte(`{"state":"Playing"}`))
	require.NoError(t, err)
	require.NoError(t, game.WriteMessage(websocket.BinaryMessage, frame))

	require.Eventually(t, func() bool {
		v, ok := s.store.Read(context.Background(), liveapi.KindGameStateChanged.FullName())
		return ok && v["state"] == "Playing"
	}, 2*time.Second, 10*time.Millisecond)

	// the bad frames did not end the session
	assert.Equal(t, 1, s.hub.Len())
}

func TestGameHandler_DetachOnClose(t *testing.T) {
	s := newStack(t)
	game := dial(t, s.game)
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	_ = game.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = game.Close()

	require.Eventually(t, func() bool { return s.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestGameHandler_ReceivesBroadcast(t *testing.T) {
	s := newStack(t)
	game := dial(t, s.game)
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	cmd := liveapi.NewBuilder(liveapi.Default(), "").SetReady(true)
	data, err := cmd.Marshal()
	require.NoError(t, err)
	assert.Equal(t, 1, s.hub.Broadcast(context.Background(), data))

	_ = game.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, got, err := game.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, data, got)
}

func TestEventsHandler_StreamsFanout(t *testing.T) {
	s := newStack(t)
	observer := dial(t, s.events)
	_ = observer.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello wsmarshaller.WSEvent
	require.NoError(t, observer.ReadJSON(&hello))
	assert.Equal(t, wsmarshaller.EventConnected, hello.Event)
	payload, _ := json.Marshal(hello.Payload)
	assert.Contains(t, string(payload), `"topic":"apexlegends"`)

	require.True(t, s.fanout.Publish(context.Background(), "rtech.liveapi.MatchSetup", map[string]any{"map": "mp_rr_tropic_island"}))

	var ev wsmarshaller.WSEvent
	require.NoError(t, observer.ReadJSON(&ev))
	assert.Equal(t, wsmarshaller.EventGameMessage, ev.Event)
	assert.Equal(t, "rtech.liveapi.MatchSetup", ev.Type)
	assert.Equal(t, map[string]any{"map": "mp_rr_tropic_island"}, ev.Payload)
}
