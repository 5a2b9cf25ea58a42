package amqp

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDMiddleware(t *testing.T) {
	var seen string
	h := TraceIDMiddleware(func(msg *message.Message) ([]*message.Message, error) {
		seen = TraceIDFrom(msg.Context())
		return nil, nil
	})

	msg := message.NewMessage(watermill.NewUUID(), nil)
	msg.Metadata.Set(traceIDMetadataKey, "abc")
	_, err := h(msg)
	require.NoError(t, err)
	assert.Equal(t, "abc", seen)

	fresh := message.NewMessage(watermill.NewUUID(), nil)
	_, err = h(fresh)
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, fresh.Metadata.Get(traceIDMetadataKey))
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	h := LoggingMiddleware(discard, "liveapi.command.set_ready")(func(*message.Message) ([]*message.Message, error) {
		return nil, boom
	})

	_, err := h(message.NewMessage(watermill.NewUUID(), nil))
	assert.ErrorIs(t, err, boom)
}
