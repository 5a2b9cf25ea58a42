package cmd

import (
	"log/slog"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
	discord "github.com/webitel/liveapi-bridge/infra/client/discord"
	infrapubsub "github.com/webitel/liveapi-bridge/infra/pubsub"
	grpcsrv "github.com/webitel/liveapi-bridge/infra/server/grpc"
	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
	amqpdi "github.com/webitel/liveapi-bridge/internal/handler/amqp"
	"github.com/webitel/liveapi-bridge/internal/handler/api"
	grpchandler "github.com/webitel/liveapi-bridge/internal/handler/grpc"
	"github.com/webitel/liveapi-bridge/internal/handler/ws"
	"github.com/webitel/liveapi-bridge/internal/service"
)

func NewApp(cfg *config.Config, v *viper.Viper, level *slog.LevelVar) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			func() *slog.LevelVar { return level },
			ProvideLogger,
			ProvideWatermillLogger,
			ProvideTracerProvider,
		),
		fx.WithLogger(fxLogger),
		fx.Invoke(func(_ trace.TracerProvider, logger *slog.Logger) {
			config.WatchLevel(v, level, logger)
		}),
		liveapi.Module,
		store.Module,
		registry.Module,
		infrapubsub.Module,
		pubsub.Module,
		discord.Module,
		service.Module,
		grpcsrv.Module,
		grpchandler.Module,
		ws.Module,
		api.Module,
		amqpdi.Module,
	)
}
