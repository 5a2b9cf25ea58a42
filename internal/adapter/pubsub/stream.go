package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

// SubscriberSource is satisfied by the infra pubsub provider.
type SubscriberSource interface {
	Subscriber(group string, durable bool) (message.Subscriber, error)
}

// EventStream opens live feeds of the fan-out topic for observers.
type EventStream struct {
	source SubscriberSource
	topic  string
}

func NewEventStream(source SubscriberSource, topic string) *EventStream {
	return &EventStream{source: source, topic: topic}
}

func (s *EventStream) Topic() string { return s.topic }

// Open subscribes a private consumer. Events stop when ctx is done; the
// returned close func releases the subscriber.
func (s *EventStream) Open(ctx context.Context) (<-chan *model.FanoutEvent, func() error, error) {
	sub, err := s.source.Subscriber("observer-"+uuid.NewString(), false)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := sub.Subscribe(ctx, s.topic)
	if err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", s.topic, err)
	}

	out := make(chan *model.FanoutEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			ev, ok := toEvent(msg)
			msg.Ack()
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close, nil
}

func toEvent(msg *message.Message) (*model.FanoutEvent, bool) {
	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, false
	}

	publishedAt, _ := strconv.ParseInt(msg.Metadata.Get(MetadataPublishedAt), 10, 64)

	ev := &model.FanoutEvent{
		ID:          msg.UUID,
		Type:        msg.Metadata.Get(MetadataType),
		Payload:     payload,
		PublishedAt: publishedAt,
	}
	return ev, true
}
