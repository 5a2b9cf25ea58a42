package registry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
)

var Module = fx.Module("registry",
	fx.Provide(
		// [CLEAN_INJECTION] Configure Hub using Functional Options
		func(cfg *config.Config, logger *slog.Logger) *Hub {
			return NewHub(logger,
				WithSendTimeout(cfg.Game.SendTimeout),
				WithParallelism(cfg.Game.Parallelism),
			)
		},
		fx.Annotate(
			func(h *Hub) Hubber { return h },
			fx.As(new(Hubber)),
		),
		fx.Annotate(
			func(h *Hub) Broadcaster { return h },
			fx.As(new(Broadcaster)),
		),
	),
	fx.Invoke(func(lc fx.Lifecycle, h Hubber) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				h.Shutdown() // [GRACEFUL_SHUTDOWN] close every game socket
				return nil
			},
		})
	}),
)
