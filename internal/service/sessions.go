package service

import (
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
)

// [SESSION_SERVICE] PRIMARY INTERFACE FOR THE GAME SOCKET HANDLER
type Sessioner interface {
	Attach(t registry.Transport, meta registry.ConnectMetadata) registry.Connector
	Detach(conn registry.Connector)
}

// Interface guard
var _ Sessioner = (*SessionService)(nil)

type SessionService struct {
	hub registry.Hubber
}

func NewSessionService(hub registry.Hubber) *SessionService {
	return &SessionService{hub: hub}
}

// [ATTACH] wraps the socket and makes it a broadcast target
func (s *SessionService) Attach(t registry.Transport, meta registry.ConnectMetadata) registry.Connector {
	conn := registry.NewConnector(t, meta)
	s.hub.Register(conn)
	return conn
}

// [DETACH] runs on every exit path of the read loop; safe to repeat
func (s *SessionService) Detach(conn registry.Connector) {
	s.hub.Unregister(conn)
	_ = conn.Close()
}
