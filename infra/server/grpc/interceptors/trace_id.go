package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const (
	// TraceIDContextKey is the key used to store/retrieve the request trace id
	TraceIDContextKey contextKey = "trace_id"

	traceIDHeader = "x-trace-id"
)

// NewUnaryTraceIDInterceptor tags every unary call with a trace id taken
// from the caller's metadata or freshly generated.
func NewUnaryTraceIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(withTraceID(ctx), req)
	}
}

// NewStreamTraceIDInterceptor does the same for streams such as health Watch.
func NewStreamTraceIDInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		// [STREAM_WRAPPING] Override the context of the original stream
		wrapped := &wrappedStream{
			ServerStream: ss,
			ctx:          withTraceID(ss.Context()),
		}

		return handler(srv, wrapped)
	}
}

func withTraceID(ctx context.Context) context.Context {
	traceID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(traceIDHeader); len(v) > 0 {
			traceID = v[0]
		}
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// wrappedStream is a thin wrapper to inject a new context into a gRPC stream.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}

// GetTraceID is a helper to extract the trace id from context safely.
func GetTraceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(TraceIDContextKey).(string)
	return id, ok
}
