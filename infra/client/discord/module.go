package discord

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
)

var Module = fx.Module("discord_client",
	// [CONSTRUCTOR] Provides the breaker-guarded REST client
	fx.Provide(func(cfg *config.Config, logger *slog.Logger) *Client {
		return New(cfg.Discord.BaseURL, cfg.Discord.Timeout, logger)
	}),
)
