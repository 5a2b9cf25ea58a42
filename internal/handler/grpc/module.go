package grpc

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/webitel/liveapi-bridge/config"
	grpcsrv "github.com/webitel/liveapi-bridge/infra/server/grpc"
	"github.com/webitel/liveapi-bridge/internal/service"
)

var Module = fx.Module("health-grpc",
	fx.Provide(
		func(cfg *config.Config, agg *service.HealthAggregator, logger *slog.Logger) *HealthReporter {
			return NewHealthReporter(agg, cfg.Health.ReportInterval, logger)
		},
	),
	fx.Invoke(RegisterHealthService),
)

func RegisterHealthService(
	lc fx.Lifecycle,
	server *grpcsrv.Server,
	reporter *HealthReporter,
) {
	healthpb.RegisterHealthServer(server.Server, reporter.Server())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go reporter.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			reporter.Stop()
			return nil
		},
	})
}
