package service

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		NewCorrelator,
		NewCommander,
		NewIntake,
		NewBridge,
		NewHealthAggregator,
		NewAutostart,

		// [CLEAN_INJECTION] Request mode and timings come from config
		func(c *Commander, st *store.Store, corr *Correlator, cfg *config.Config, logger *slog.Logger) *Requester {
			return NewRequester(c, st, corr, logger,
				WithRequestMode(RequestMode(cfg.Requests.Mode)),
				WithRequestTimeout(cfg.Requests.Timeout),
				WithRequestDelay(cfg.Requests.Delay),
			)
		},

		// Domain services
		fx.Annotate(
			NewSessionService,
			fx.As(new(Sessioner)),
		),
		fx.Annotate(
			func(b *Bridge) Ingester { return b },
			fx.As(new(Ingester)),
		),
		NewNotifier,
	),

	// [DECORATION_LAYER] Intercept Notifier to add cross-cutting concerns
	fx.Decorate(func(orig Notifier, logger *slog.Logger) Notifier {
		return NewNotifierMiddleware(orig, logger)
	}),
)
