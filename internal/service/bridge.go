package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

var ErrFramePanic = errors.New("inbound frame panicked")

// Ingester consumes raw binary frames from game connections.
type Ingester interface {
	HandleFrame(ctx context.Context, frame []byte) error
}

// Interface guard
var _ Ingester = (*Bridge)(nil)

// Bridge is the inbound pipeline: envelope, decode, store, fan-out and
// reply correlation, applied to every frame and then to any nested result.
type Bridge struct {
	catalog    *liveapi.Catalog
	decoder    *liveapi.Decoder
	store      *store.Store
	fanout     pubsub.EventDispatcher
	correlator *Correlator
	logger     *slog.Logger
	tracer     trace.Tracer

	frames   atomic.Uint64
	rejected atomic.Uint64
}

func NewBridge(
	catalog *liveapi.Catalog,
	decoder *liveapi.Decoder,
	st *store.Store,
	fanout pubsub.EventDispatcher,
	correlator *Correlator,
	logger *slog.Logger,
) *Bridge {
	return &Bridge{
		catalog:    catalog,
		decoder:    decoder,
		store:      st,
		fanout:     fanout,
		correlator: correlator,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// HandleFrame processes one frame. A malformed frame or a panic is
// returned as an error; the caller keeps reading either way.
func (b *Bridge) HandleFrame(ctx context.Context, frame []byte) (err error) {
	ctx, span := b.tracer.Start(ctx, "liveapi.inbound.frame",
		trace.WithAttributes(attribute.Int("liveapi.frame_bytes", len(frame))),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
			b.logger.Error("INBOUND_FRAME_PANIC",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
		if err != nil {
			b.rejected.Add(1)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	b.frames.Add(1)

	env, err := b.catalog.DecodeEnvelope(frame)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("liveapi.type", env.TypeName))

	b.ingest(ctx, b.decoder.Decode(env.TypeName, env.Payload))
	return nil
}

func (b *Bridge) ingest(ctx context.Context, dec *liveapi.Decoded) {
	for d := dec; d != nil; d = d.Nested {
		// Replies resolve waiters even when empty: an all-default
		// settings reply is still an answer.
		if id, ok := b.correlator.Resolve(correlationKey(d), d.Value); ok {
			b.logger.Debug("REQUEST_CORRELATED",
				slog.String("type", d.TypeName),
				slog.String("command_id", id.String()),
			)
		}

		if len(d.Value) == 0 {
			b.logger.Debug("INBOUND_EMPTY_SKIPPED", slog.String("type", d.TypeName))
			continue
		}

		if err := b.store.Write(ctx, d.TypeName, d.Value); err != nil {
			b.logger.Error("INBOUND_STORE_FAILED", slog.String("type", d.TypeName), slog.Any("err", err))
		}
		b.fanout.Publish(ctx, d.TypeName, d.Value)

		b.logger.Debug("INBOUND_MESSAGE",
			slog.String("type", d.TypeName),
			slog.Bool("degraded", d.Degraded),
		)
	}
}

// Stats is frames seen and frames rejected since start.
func (b *Bridge) Stats() (frames, rejected uint64) {
	return b.frames.Load(), b.rejected.Load()
}

func correlationKey(d *liveapi.Decoded) string {
	if d.Kind != liveapi.KindUnknown {
		return d.Kind.FullName()
	}
	return d.TypeName
}
