package service

import (
	"context"
	"time"

	"github.com/webitel/liveapi-bridge/internal/adapter/pubsub"
	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

// HealthSignals is everything the health decision looks at.
type HealthSignals struct {
	Connections  int
	StoreEntries int
	BackendUp    bool
	LobbyRoster  store.Value
	GenericReply store.Value
	Fanout       model.FanoutStatus
	Now          time.Time
}

// EvaluateHealth is the pure decision table.
//
//	healthy   connected, responsive, store available
//	degraded  connected, not responsive, store available
//	issues    connected, not responsive
//	error     anything else
//
// The store is available once it holds at least one entry. Responsive
// means a lobby roster or a generic reply has been seen while at least
// one game connection is attached. Backend reachability is reported but
// does not move the status.
func EvaluateHealth(s HealthSignals) model.HealthReport {
	connected := s.Connections > 0
	storeAvailable := s.StoreEntries > 0
	responsive := connected && (len(s.LobbyRoster) > 0 || len(s.GenericReply) > 0)

	status := model.HealthError
	switch {
	case connected && responsive && storeAvailable:
		status = model.HealthHealthy
	case connected && !responsive && storeAvailable:
		status = model.HealthDegraded
	case connected && !responsive:
		status = model.HealthIssues
	}

	return model.HealthReport{
		Status:          status,
		Connected:       connected,
		Responsive:      responsive,
		StoreAvailable:  storeAvailable,
		BackendUp:       s.BackendUp,
		FanOutStreaming: s.Fanout.Streaming,
		Connections:     s.Connections,
		StoreEntries:    s.StoreEntries,
		Fanout:          s.Fanout,
		CheckedAt:       s.Now.UTC().Format(time.RFC3339),
	}
}

// HealthAggregator samples live signals for EvaluateHealth.
type HealthAggregator struct {
	hub    registry.Broadcaster
	store  *store.Store
	fanout pubsub.EventDispatcher
	now    func() time.Time
}

func NewHealthAggregator(hub registry.Broadcaster, st *store.Store, fanout pubsub.EventDispatcher) *HealthAggregator {
	return &HealthAggregator{hub: hub, store: st, fanout: fanout, now: time.Now}
}

// Report never caches: every call reads current state.
func (h *HealthAggregator) Report(ctx context.Context) model.HealthReport {
	now := h.now()
	lobby, _ := h.store.Read(ctx, liveapi.KindLobbyPlayers.FullName())
	reply, _ := h.store.Read(ctx, liveapi.KindResponse.FullName())

	return EvaluateHealth(HealthSignals{
		Connections:  h.hub.Len(),
		StoreEntries: h.store.Len(ctx),
		BackendUp:    h.store.Available(ctx),
		LobbyRoster:  lobby,
		GenericReply: reply,
		Fanout:       h.fanout.Status(now),
		Now:          now,
	})
}
