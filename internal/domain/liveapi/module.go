package liveapi

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
)

var Module = fx.Module("liveapi",
	fx.Provide(
		func() *Catalog { return Default() },
		func(c *Catalog, logger *slog.Logger) *Decoder { return NewDecoder(c, logger) },
		func(c *Catalog, cfg *config.Config) *Builder { return NewBuilder(c, cfg.Game.PreSharedKey) },
	),
)
