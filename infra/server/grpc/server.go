// Package grpc runs the bridge's gRPC listener.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/webitel/liveapi-bridge/infra/server/grpc/interceptors"
)

type Server struct {
	*grpc.Server
	addr   string
	ln     net.Listener
	logger *slog.Logger
}

// InterceptorLogger adapts slog to the middleware's logger.
func InterceptorLogger(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		if id, ok := interceptors.GetTraceID(ctx); ok {
			fields = append(fields, "trace_id", id)
		}
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

func New(addr string, logger *slog.Logger) *Server {
	onPanic := recovery.WithRecoveryHandler(func(p any) error {
		logger.Error("GRPC_PANIC_RECOVERED", slog.Any("panic", p))
		return status.Errorf(codes.Internal, "internal error")
	})
	logOpts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.NewUnaryTraceIDInterceptor(),
			logging.UnaryServerInterceptor(InterceptorLogger(logger), logOpts...),
			recovery.UnaryServerInterceptor(onPanic),
		),
		grpc.ChainStreamInterceptor(
			interceptors.NewStreamTraceIDInterceptor(),
			logging.StreamServerInterceptor(InterceptorLogger(logger), logOpts...),
			recovery.StreamServerInterceptor(onPanic),
		),
	)

	return &Server{Server: srv, addr: addr, logger: logger}
}

// Start binds synchronously, then serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", s.addr, err)
	}
	s.ln = ln

	go func() {
		if err := s.Serve(ln); err != nil {
			s.logger.Error("GRPC_SERVER_FAILED", slog.Any("err", err))
		}
	}()

	s.logger.Info("GRPC_SERVER_STARTED", slog.String("addr", s.Addr()))
	return nil
}

func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop drains in-flight calls until ctx ends, then forces the close.
func (s *Server) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.Server.Stop()
	}
}
