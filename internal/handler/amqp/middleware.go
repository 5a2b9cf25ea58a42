package amqp

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const traceIDMetadataKey = "trace_id"

type traceIDKey struct{}

// TraceIDFrom returns the trace id set by TraceIDMiddleware.
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// [TRACE_ID_MIDDLEWARE]
// Keeps the publisher's trace id, or stamps a new one, and opens a span
// around the whole delivery including retries.
func TraceIDMiddleware(h message.HandlerFunc) message.HandlerFunc {
	tracer := otel.Tracer(tracerName)

	return func(msg *message.Message) ([]*message.Message, error) {
		traceID := msg.Metadata.Get(traceIDMetadataKey)
		if traceID == "" {
			traceID = uuid.NewString()
			msg.Metadata.Set(traceIDMetadataKey, traceID)
		}

		ctx, span := tracer.Start(msg.Context(), "liveapi.command.consume")
		defer span.End()
		span.SetAttributes(
			attribute.String("trace_id", traceID),
			attribute.String("msg_id", msg.UUID),
		)

		msg.SetContext(context.WithValue(ctx, traceIDKey{}, traceID))

		msgs, err := h(msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return msgs, err
	}
}

// [LOGGING_MIDDLEWARE]
// One line per attempt: debug when handled, warn when the attempt failed.
func LoggingMiddleware(logger *slog.Logger, topic string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			start := time.Now()
			msgs, err := h(msg)

			attrs := []any{
				"msg_id", msg.UUID,
				"topic", topic,
				"trace_id", TraceIDFrom(msg.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				logger.Warn("COMMAND_ATTEMPT_FAILED", append(attrs, "err", err)...)
			} else {
				logger.Debug("COMMAND_MESSAGE_HANDLED", attrs...)
			}
			return msgs, err
		}
	}
}

// [RETRY_MIDDLEWARE]
// Backoff long enough for a game to reconnect between attempts.
func NewRetryMiddleware(logger *slog.Logger) middleware.Retry {
	return middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     15 * time.Second,
		Multiplier:      2.0,
		OnRetryHook: func(retryNum int, delay time.Duration) {
			logger.Info("COMMAND_RETRY_SCHEDULED", "attempt", retryNum, "delay", delay)
		},
	}
}
