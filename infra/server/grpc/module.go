package grpc

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
)

var Module = fx.Module("grpc_server",
	fx.Provide(func(cfg *config.Config, logger *slog.Logger) *Server {
		return New(cfg.GRPC.Addr, logger)
	}),
	// Handlers register during construction, so Start runs after them.
	fx.Invoke(func(lc fx.Lifecycle, s *Server) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Start()
			},
			OnStop: func(ctx context.Context) error {
				s.Stop(ctx)
				return nil
			},
		})
	}),
)
