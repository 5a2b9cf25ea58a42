package lpmarshaller

import (
	"encoding/json"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

// LPEvent represents a single event structured for long-polling consumers.
type LPEvent struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	PublishedAt int64  `json:"published_at"`
	Payload     any    `json:"payload"`
}

// Response defines the top-level JSON array to support event batching.
type Response struct {
	Events []LPEvent `json:"events"`
}

// MarshallEvents converts a batch of fan-out events into one JSON document.
func MarshallEvents(events []*model.FanoutEvent) ([]byte, error) {
	res := Response{
		Events: make([]LPEvent, 0, len(events)),
	}

	for _, ev := range events {
		typ := ev.Type
		if typ == "" {
			typ = "unknown"
		}
		res.Events = append(res.Events, LPEvent{
			Type:        typ,
			ID:          ev.ID,
			PublishedAt: ev.PublishedAt,
			Payload:     ev.Payload,
		})
	}

	return json.Marshal(res)
}
