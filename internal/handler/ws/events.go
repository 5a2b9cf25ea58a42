package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	wsmarshaller "github.com/webitel/liveapi-bridge/internal/handler/marshaller/ws"
)

// EventSource opens a private feed of the fan-out topic.
type EventSource interface {
	Open(ctx context.Context) (<-chan *model.FanoutEvent, func() error, error)
	Topic() string
}

// Interface guard
var _ EventSource = (*pubsub.EventStream)(nil)

// EventsHandler streams every published game message to an observer.
type EventsHandler struct {
	logger   *slog.Logger
	source   EventSource
	upgrader websocket.Upgrader
}

func NewEventsHandler(logger *slog.Logger, source EventSource) *EventsHandler {
	return &EventsHandler{
		logger: logger,
		source: source,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // dashboards run on other origins
		},
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. UPGRADE TO WEBSOCKET
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("EVENTS_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	connID := uuid.NewString()
	l := h.logger.With(slog.String("conn_id", connID))

	// 2. SUBSCRIBE A PRIVATE CONSUMER
	events, unsubscribe, err := h.source.Open(ctx)
	if err != nil {
		l.Error("EVENTS_SUBSCRIBE_FAILED", slog.Any("err", err))
		h.sendClosed(ws, "subscribe failed", "SUBSCRIBE_FAILED")
		return
	}
	defer func() { _ = unsubscribe() }()

	// [HANDSHAKE_LOGIC]
	hello, err := wsmarshaller.MarshallHello(&model.StreamHello{
		Ok:            true,
		ConnectionID:  connID,
		ServerVersion: model.ServerVersion,
		Topic:         h.source.Topic(),
	})
	if err == nil {
		err = ws.WriteMessage(websocket.TextMessage, hello)
	}
	if err != nil {
		l.Warn("EVENTS_HANDSHAKE_FAILED", slog.Any("err", err))
		return
	}
	l.Info("EVENTS_STREAM_OPENED")

	// [CLIENT_CLOSE_DETECTION] observers never send; a read error means gone
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 3. MAIN WS PUMP LOOP
	for {
		select {
		case <-ctx.Done():
			l.Info("EVENTS_STREAM_CLOSED", slog.Any("reason", ctx.Err()))
			return
		case ev, ok := <-events:
			if !ok {
				// [TERMINATION_SENTINEL]
				h.sendClosed(ws, "stream closed by server", "SHUTDOWN")
				l.Warn("EVENTS_STREAM_TERMINATED")
				return
			}

			data, err := wsmarshaller.MarshallFanoutEvent(ev)
			if err != nil {
				l.Error("EVENTS_MARSHAL_FAILED", slog.Any("err", err))
				continue
			}

			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				l.Warn("EVENTS_SEND_FAILED", slog.Any("err", err))
				return
			}
		}
	}
}

func (h *EventsHandler) sendClosed(ws *websocket.Conn, reason, code string) {
	data, err := wsmarshaller.MarshallClosed(&model.StreamClosed{Reason: reason, Code: code})
	if err != nil {
		return
	}
	_ = ws.WriteMessage(websocket.TextMessage, data)
}
