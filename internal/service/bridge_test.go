package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
)

func TestBridge_StoresAndPublishes(t *testing.T) {
	h := newHarness(t)
	frame := h.frame(t, liveapi.KindGameStateChanged, `{"timestamp":"1700000000","state":"Playing"}`)

	require.NoError(t, h.bridge.HandleFrame(context.Background(), frame))

	v, ok := h.store.Read(context.Background(), liveapi.KindGameStateChanged.FullName())
	require.True(t, ok)
	assert.Equal(t, "Playing", v["state"])
	h.fanout.AssertCalled(t, "Publish", liveapi.KindGameStateChanged.FullName(), mock.Anything)
}

func TestBridge_MalformedFrameRejected(t *testing.T) {
	h := newHarness(t)

	err := h.bridge.HandleFrame(context.Background(), []byte{0xff, 0x01})
	assert.ErrorIs(t, err, liveapi.ErrMalformedEnvelope)

	frames, rejected := h.bridge.Stats()
	assert.Equal(t, uint64(1), frames)
	assert.Equal(t, uint64(1), rejected)
	assert.Zero(t, h.store.Len(context.Background()))
}

func TestBridge_NestedStoredUnderOwnKey(t *testing.T) {
	h := newHarness(t)
	frame := h.frame(t, liveapi.KindResponse, `{
		"success": true,
		"result": {"@type": "type.googleapis.com/rtech.liveapi.CustomMatch_LobbyPlayers", "playerToken": "abc"}
	}`)

	require.NoError(t, h.bridge.HandleFrame(context.Background(), frame))

	wrapper, ok := h.store.Read(context.Background(), liveapi.KindResponse.FullName())
	require.True(t, ok)
	assert.Equal(t, true, wrapper["success"])

	nested, ok := h.store.Read(context.Background(), liveapi.KindLobbyPlayers.FullName())
	require.True(t, ok)
	assert.Equal(t, "abc", nested["playerToken"])
}

func TestBridge_EmptyValueNotStored(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.bridge.HandleFrame(context.Background(), h.frame(t, liveapi.KindLobbyPlayers, `{}`)))

	_, ok := h.store.Read(context.Background(), liveapi.KindLobbyPlayers.FullName())
	assert.False(t, ok)
	h.fanout.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
