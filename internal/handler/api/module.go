package api

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
	"github.com/webitel/liveapi-bridge/internal/handler/lp"
	"github.com/webitel/liveapi-bridge/internal/handler/ws"
	"github.com/webitel/liveapi-bridge/internal/service"

	httpsrv "github.com/webitel/liveapi-bridge/infra/server/http"
)

var Module = fx.Module("api",
	fx.Provide(
		func(stream *pubsub.EventStream) *lp.LPHandler { return lp.NewLPHandler(stream) },
		func(
			cfg *config.Config,
			intake *service.Intake,
			requester *service.Requester,
			autostart *service.Autostart,
			st *store.Store,
			health *service.HealthAggregator,
			events *ws.EventsHandler,
			poll *lp.LPHandler,
			logger *slog.Logger,
		) *Handler {
			return NewHandler(Deps{
				Intake:    intake,
				Requester: requester,
				Autostart: autostart,
				Store:     st,
				Health:    health,
				Events:    events,
				Poll:      poll.Poll,
				Limiter:   rate.NewLimiter(rate.Limit(cfg.API.RateLimit), cfg.API.RateBurst),
				Logger:    logger,
			})
		},
	),
	fx.Invoke(RegisterAPIListener),
)

func RegisterAPIListener(lc fx.Lifecycle, cfg *config.Config, h *Handler, logger *slog.Logger) {
	srv := httpsrv.New("api", cfg.API.Addr, h.Routes(), logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.API.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}
