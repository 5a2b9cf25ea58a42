// Package monitor renders a live terminal view of a running bridge.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

// Snapshot is one refresh of both probes. A failed probe leaves its error set.
type Snapshot struct {
	Report     model.HealthReport
	ReportErr  error
	Serving    healthpb.HealthCheckResponse_ServingStatus
	ServingErr error
	At         time.Time
}

type Poller struct {
	http   *http.Client
	apiURL string
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

func NewPoller(apiURL, grpcAddr string) (*Poller, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("monitor: dial %s: %w", grpcAddr, err)
	}

	return &Poller{
		http:   &http.Client{Timeout: 3 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Poll queries /status and the gRPC health service concurrently.
func (p *Poller) Poll(ctx context.Context) Snapshot {
	snap := Snapshot{At: time.Now()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		snap.Report, snap.ReportErr = p.status(ctx)
	}()

	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		snap.ServingErr = err
	} else {
		snap.Serving = resp.GetStatus()
	}

	<-done
	return snap
}

func (p *Poller) status(ctx context.Context) (model.HealthReport, error) {
	var report model.HealthReport

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/status", nil)
	if err != nil {
		return report, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return report, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("status: unexpected %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return report, fmt.Errorf("status: decode: %w", err)
	}
	return report, nil
}

func (p *Poller) Close() error {
	return p.conn.Close()
}
