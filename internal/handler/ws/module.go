package ws

import (
	"context"
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/service"

	httpsrv "github.com/webitel/liveapi-bridge/infra/server/http"
)

var Module = fx.Module("ws",
	fx.Provide(
		func(logger *slog.Logger, sessions service.Sessioner, ingester service.Ingester, cfg *config.Config) *GameHandler {
			return NewGameHandler(logger, sessions, ingester, cfg.Game.ReadLimit)
		},
		func(logger *slog.Logger, stream *pubsub.EventStream) *EventsHandler {
			return NewEventsHandler(logger, stream)
		},
	),
	fx.Invoke(RegisterGameListener),
)

// RegisterGameListener serves game sockets on their own port, any path.
func RegisterGameListener(lc fx.Lifecycle, cfg *config.Config, handler *GameHandler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/", handler)
	srv := httpsrv.New("game", cfg.Game.Addr, mux, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
