package grpc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/service"
)

// ServiceName is the health service key callers can Check besides "".
const ServiceName = "liveapi.Bridge"

type HealthSource interface {
	Report(ctx context.Context) model.HealthReport
}

// Interface guard
var _ HealthSource = (*service.HealthAggregator)(nil)

// HealthReporter mirrors the aggregated bridge state onto the standard
// gRPC health service.
type HealthReporter struct {
	server   *health.Server
	source   HealthSource
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last healthpb.HealthCheckResponse_ServingStatus

	stop chan struct{}
	done chan struct{}
}

func NewHealthReporter(source HealthSource, interval time.Duration, logger *slog.Logger) *HealthReporter {
	return &HealthReporter{
		server:   health.NewServer(),
		source:   source,
		interval: interval,
		logger:   logger,
		last:     healthpb.HealthCheckResponse_UNKNOWN,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *HealthReporter) Server() *health.Server {
	return r.server
}

// Refresh evaluates the bridge once and publishes the serving status.
func (r *HealthReporter) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	report := r.source.Report(ctx)

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if report.Status.Serving() {
		status = healthpb.HealthCheckResponse_SERVING
	}

	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceName, status)

	r.mu.Lock()
	changed := r.last != status
	r.last = status
	r.mu.Unlock()

	if changed {
		r.logger.Info("GRPC_HEALTH_CHANGED",
			slog.String("serving", status.String()),
			slog.String("state", report.Status.String()),
		)
	}
	return status
}

// Run refreshes on every tick until Stop.
func (r *HealthReporter) Run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), r.interval)
		r.Refresh(ctx)
		cancel()

		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the loop and flips every service to NOT_SERVING.
func (r *HealthReporter) Stop() {
	close(r.stop)
	<-r.done
	r.server.Shutdown()
}
