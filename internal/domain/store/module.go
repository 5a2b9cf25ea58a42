package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
)

// NewBackend picks the backend named in config.
func NewBackend(cfg *config.Config) Backend {
	if cfg.Store.Backend == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return NewRedisBackend(client, cfg.Store.Redis.Key)
	}
	return NewMemoryBackend()
}

var Module = fx.Module("store",
	fx.Provide(NewBackend, New),
	fx.Invoke(func(lc fx.Lifecycle, s *Store, cfg *config.Config, logger *slog.Logger) {
		lc.Append(fx.Hook{
			// [FAIL_FAST] An unreachable shared backend is a startup error.
			OnStart: func(ctx context.Context) error {
				if !s.Available(ctx) {
					return fmt.Errorf("%w: %s backend unreachable", ErrBackend, cfg.Store.Backend)
				}
				logger.Info("STORE_READY", slog.String("backend", cfg.Store.Backend))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return s.Close()
			},
		})
	}),
)
