package lp

import (
	"context"
	"net/http"
	"time"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
	lpmarshaller "github.com/webitel/liveapi-bridge/internal/handler/marshaller/lp"
)

const (
	defaultPollTimeout = 30 * time.Second
	maxBatch           = 16
)

// EventSource opens a private feed of the fan-out topic.
type EventSource interface {
	Open(ctx context.Context) (<-chan *model.FanoutEvent, func() error, error)
}

type LPHandler struct {
	source  EventSource
	timeout time.Duration
}

func NewLPHandler(source EventSource) *LPHandler {
	return &LPHandler{
		source:  source,
		timeout: defaultPollTimeout,
	}
}

// Poll handles the long-polling request.
// It holds the connection until an event arrives or timeout occurs. Only
// events published while the request is open are seen.
func (h *LPHandler) Poll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 1. Temporary Subscription.
	// The subscriber lives only for the duration of this HTTP request.
	events, unsubscribe, err := h.source.Open(ctx)
	if err != nil {
		http.Error(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}
	defer func() { _ = unsubscribe() }()

	var batch []*model.FanoutEvent

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	// 2. Wait for data or timeout.
	select {
	case <-r.Context().Done():
		// Client disconnected.
		return

	case <-timer.C:
		// Standard Long-Polling timeout to prevent hanging connections.
		w.WriteHeader(http.StatusNoContent)
		return

	case ev, ok := <-events:
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		batch = append(batch, ev)

		// Drain whatever is already buffered to provide batching.
	drainLoop:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-events:
				if !ok {
					break drainLoop
				}
				batch = append(batch, next)
			default:
				break drainLoop
			}
		}
	}

	// 3. Final transmission.
	data, err := lpmarshaller.MarshallEvents(batch)
	if err != nil {
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
