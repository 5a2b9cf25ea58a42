package lp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
	lpmarshaller "github.com/webitel/liveapi-bridge/internal/handler/marshaller/lp"
)

type staticSource struct{ events []*model.FanoutEvent }

func (s staticSource) Open(ctx context.Context) (<-chan *model.FanoutEvent, func() error, error) {
	ch := make(chan *model.FanoutEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	return ch, func() error { return nil }, nil
}

func TestPoll_Batches(t *testing.T) {
	h := NewLPHandler(staticSource{events: []*model.FanoutEvent{
		{ID: "1", Type: "rtech.liveapi.GameStateChanged", Payload: map[string]any{"state": "Playing"}},
		{ID: "2", Type: "rtech.liveapi.PlayerKilled"},
	}})

	rec := httptest.NewRecorder()
	h.Poll(rec, httptest.NewRequest(http.MethodGet, "/events/poll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res lpmarshaller.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Events, 2)
	assert.Equal(t, "rtech.liveapi.GameStateChanged", res.Events[0].Type)
	assert.Equal(t, "2", res.Events[1].ID)
}

func TestPoll_TimeoutNoContent(t *testing.T) {
	h := NewLPHandler(staticSource{})
	h.timeout = 20 * time.Millisecond

	rec := httptest.NewRecorder()
	h.Poll(rec, httptest.NewRequest(http.MethodGet, "/events/poll", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
