package wsmarshaller

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

const (
	EventConnected    = "connected"
	EventGameMessage  = "game_message"
	EventDisconnected = "disconnected"
)

// WSEvent is a generic wrapper for WebSocket messages to provide consistent structure
type WSEvent struct {
	Event   string `json:"event"`          // "connected", "game_message", "disconnected"
	ID      string `json:"id"`             // fan-out message id
	Type    string `json:"type,omitempty"` // game message type name
	SentAt  int64  `json:"sent_at"`
	Payload any    `json:"payload"`
}

// MarshallFanoutEvent prepares one decoded game message for an observer.
func MarshallFanoutEvent(ev *model.FanoutEvent) ([]byte, error) {
	sentAt := ev.PublishedAt
	if sentAt == 0 {
		sentAt = time.Now().UnixMilli()
	}

	return json.Marshal(&WSEvent{
		Event:   EventGameMessage,
		ID:      ev.ID,
		Type:    ev.Type,
		SentAt:  sentAt,
		Payload: ev.Payload,
	})
}

// MarshallHello is the handshake frame of an events stream.
func MarshallHello(hello *model.StreamHello) ([]byte, error) {
	return json.Marshal(&WSEvent{
		Event:   EventConnected,
		ID:      uuid.NewString(),
		SentAt:  time.Now().UnixMilli(),
		Payload: hello,
	})
}

// MarshallClosed is the last frame before the server ends a stream.
func MarshallClosed(closed *model.StreamClosed) ([]byte, error) {
	return json.Marshal(&WSEvent{
		Event:   EventDisconnected,
		ID:      uuid.NewString(),
		SentAt:  time.Now().UnixMilli(),
		Payload: closed,
	})
}
