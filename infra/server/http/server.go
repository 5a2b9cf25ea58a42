// Package http runs the bridge's plain HTTP listeners.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server is one named listener. Start binds synchronously so a taken
// port fails the fx start instead of a background goroutine.
type Server struct {
	name   string
	addr   string
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

func New(name, addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		name: name,
		addr: addr,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP_SERVER_FAILED", slog.String("server", s.name), slog.Any("err", err))
		}
	}()

	s.logger.Info("HTTP_SERVER_STARTED", slog.String("server", s.name), slog.String("addr", s.Addr()))
	return nil
}

// Addr is the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Shutdown stops accepting and waits for plain requests. Hijacked
// websocket connections are closed by their own owners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP_SERVER_STOPPING", slog.String("server", s.name))
	return s.srv.Shutdown(ctx)
}
