package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"
)

var Module = fx.Module("pubsub",
	fx.Provide(
		NewProvider,
		func(p *Provider) message.Publisher { return p.Publisher() },
	),
	fx.Invoke(func(lc fx.Lifecycle, p *Provider, logger *slog.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				logger.Info("PUBSUB_READY", slog.String("driver", p.Driver()))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return p.Close()
			},
		})
	}),
)
