package amqp

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
	infrapubsub "github.com/webitel/liveapi-bridge/infra/pubsub"
	"github.com/webitel/liveapi-bridge/internal/service"
)

var Module = fx.Module("command-consumer",
	fx.Provide(
		func(p *infrapubsub.Provider) Bus { return p },
		func(cfg *config.Config, intake *service.Intake, autostart *service.Autostart, logger *slog.Logger) *CommandHandler {
			return NewCommandHandler(cfg, intake, autostart, logger)
		},
		NewWatermillRouter,
	),

	fx.Invoke(RegisterHandlers),
)

func RegisterHandlers(lc fx.Lifecycle, router *message.Router, h *CommandHandler, bus Bus, logger *slog.Logger) error {
	if err := h.RegisterHandlers(router, bus); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			failed := make(chan error, 1)
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Error("COMMAND_ROUTER_STOPPED", slog.Any("err", err))
					failed <- err
				}
			}()

			select {
			case <-router.Running():
				return nil
			case err := <-failed:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		OnStop: func(ctx context.Context) error {
			return router.Close()
		},
	})
	return nil
}
