package service

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
)

func TestSetReady_PrunesClosedConnection(t *testing.T) {
	h := newHarness(t)
	live := &fakeGame{}
	h.attach(live)
	h.attach(&fakeGame{failWith: websocket.ErrCloseSent})
	require.Equal(t, 2, h.hub.Len())

	d := h.commander.SetReady(context.Background(), true)

	assert.Equal(t, 1, d.Reached)
	assert.Equal(t, 1, h.hub.Len())
	assert.Equal(t, 1, live.received())

	echo := d.Echo()
	assert.Equal(t, true, echo["withAck"])
	assert.Equal(t, map[string]any{"isReady": true}, echo["customMatch_SetReady"])
}

func TestInboundRoster_Stored(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.bridge.HandleFrame(context.Background(), h.frame(t, liveapi.KindLobbyPlayers, rosterJSON)))

	v, ok := h.store.Read(context.Background(), liveapi.KindLobbyPlayers.FullName())
	require.True(t, ok)
	assert.Len(t, v["players"], 3)
	assert.Equal(t, "tok-1", v["playerToken"])
}

func TestRequester_Modes(t *testing.T) {
	modes := []struct {
		name string
		opts []RequesterOption
	}{
		{"correlated", []RequesterOption{WithRequestMode(ModeCorrelated), WithRequestTimeout(time.Second)}},
		{"await", []RequesterOption{WithRequestMode(ModeAwait), WithRequestTimeout(time.Second)}},
		{"delay", []RequesterOption{WithRequestMode(ModeDelay), WithRequestDelay(200 * time.Millisecond)}},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			h := newHarness(t)
			h.attach(&fakeGame{reply: h.replyWith(h.frame(t, liveapi.KindLobbyPlayers, rosterJSON))})

			roster := h.requester(m.opts...).FetchLobbyPlayers(context.Background())
			assert.Len(t, roster["players"], 3)
		})
	}
}

func TestRequester_TimeoutIsEmpty(t *testing.T) {
	h := newHarness(t)
	game := &fakeGame{}
	h.attach(game)

	start := time.Now()
	roster := h.requester(WithRequestTimeout(50 * time.Millisecond)).FetchLobbyPlayers(context.Background())

	assert.NotNil(t, roster)
	assert.Empty(t, roster)
	assert.Equal(t, 1, game.received())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Zero(t, h.correlator.Pending(liveapi.KindLobbyPlayers.FullName()))
}

func TestRequester_NoConnectionsReturnsAtOnce(t *testing.T) {
	h := newHarness(t)

	start := time.Now()
	roster := h.requester(WithRequestTimeout(5 * time.Second)).FetchLobbyPlayers(context.Background())

	assert.Empty(t, roster)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRequester_UnrelatedWriteDoesNotAnswer(t *testing.T) {
	h := newHarness(t)
	h.attach(&fakeGame{reply: h.replyWith(h.frame(t, liveapi.KindGameStateChanged, `{"state":"Playing"}`))})

	roster := h.requester(WithRequestTimeout(100 * time.Millisecond)).FetchLobbyPlayers(context.Background())
	assert.Empty(t, roster)
}

func TestRequester_NestedResponseAnswers(t *testing.T) {
	h := newHarness(t)
	wrapped := h.frame(t, liveapi.KindResponse, `{
		"success": true,
		"result": {"@type": "type.googleapis.com/rtech.liveapi.CustomMatch_LobbyPlayers", "playerToken": "tok-9"}
	}`)
	h.attach(&fakeGame{reply: h.replyWith(wrapped)})

	token, ok := h.requester(WithRequestTimeout(time.Second)).GetLobbyToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "tok-9", token)

	_, stored := h.store.Read(context.Background(), liveapi.KindResponse.FullName())
	assert.True(t, stored)
}

func TestRequester_PlayerField(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.bridge.HandleFrame(context.Background(), h.frame(t, liveapi.KindLobbyPlayers, rosterJSON)))

	r := h.requester(WithRequestTimeout(50 * time.Millisecond))
	assert.Equal(t, []any{"alpha", "bravo", "charlie"}, r.PlayerField(context.Background(), "name"))
	assert.Equal(t, []any{"PC", "PS4", "X1"}, r.PlayerField(context.Background(), "hardwareName"))
}
