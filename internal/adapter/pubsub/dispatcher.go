package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

const (
	// MetadataType carries the fully-qualified message type on every bus message.
	MetadataType        = "type"
	MetadataPublishedAt = "published_at"
)

// EventDispatcher is the fan-out side of the bridge.
type EventDispatcher interface {
	Publish(ctx context.Context, typeName string, value map[string]any) bool
	Status(now time.Time) model.FanoutStatus
}

// Interface guard
var _ EventDispatcher = (*Dispatcher)(nil)

// Dispatcher publishes decoded values to one topic and keeps counters.
// Publish failures are counted and logged, never returned.
type Dispatcher struct {
	publisher message.Publisher
	topic     string
	window    time.Duration
	logger    *slog.Logger

	total  atomic.Uint64
	errors atomic.Uint64
	last   atomic.Int64 // unix nanos of the last successful publish
}

func NewDispatcher(pub message.Publisher, topic string, window time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: pub,
		topic:     topic,
		window:    window,
		logger:    logger,
	}
}

func (d *Dispatcher) Topic() string { return d.topic }

func (d *Dispatcher) Publish(ctx context.Context, typeName string, value map[string]any) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		d.errors.Add(1)
		d.logger.Error("FANOUT_MARSHAL_FAILED", slog.String("type", typeName), slog.Any("err", err))
		return false
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	now := time.Now()
	msg.Metadata.Set(MetadataType, typeName)
	msg.Metadata.Set(MetadataPublishedAt, strconv.FormatInt(now.UnixMilli(), 10))
	msg.SetContext(ctx)

	if err := d.publisher.Publish(d.topic, msg); err != nil {
		d.errors.Add(1)
		d.logger.Error("FANOUT_PUBLISH_FAILED",
			slog.String("type", typeName),
			slog.String("topic", d.topic),
			slog.Any("err", err),
		)
		return false
	}

	d.total.Add(1)
	d.last.Store(now.UnixNano())
	d.logger.Debug("FANOUT_PUBLISHED", slog.String("type", typeName), slog.String("msg_id", msg.UUID))
	return true
}

// Status is streaming while the last successful publish is within the window.
func (d *Dispatcher) Status(now time.Time) model.FanoutStatus {
	st := model.FanoutStatus{
		TotalMessages: d.total.Load(),
		Errors:        d.errors.Load(),
	}

	lastNanos := d.last.Load()
	if lastNanos == 0 {
		return st
	}

	last := time.Unix(0, lastNanos)
	since := now.Sub(last)
	lastISO := last.UTC().Format(time.RFC3339)
	seconds := int64(since / time.Second)
	st.LastPublish = &lastISO
	st.SecondsSinceLast = &seconds
	st.Streaming = since < d.window

	return st
}
