package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/service"
)

// GameHandler accepts LiveAPI connections from game clients.
type GameHandler struct {
	logger    *slog.Logger
	sessions  service.Sessioner
	ingester  service.Ingester
	upgrader  websocket.Upgrader
	readLimit int64
}

func NewGameHandler(logger *slog.Logger, sessions service.Sessioner, ingester service.Ingester, readLimit int64) *GameHandler {
	return &GameHandler{
		logger:    logger,
		sessions:  sessions,
		ingester:  ingester,
		readLimit: readLimit,
		upgrader: websocket.Upgrader{
			// Game clients send no Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. UPGRADE TO WEBSOCKET
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("GAME_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	if h.readLimit > 0 {
		ws.SetReadLimit(h.readLimit)
	}

	// 2. REGISTER AS A BROADCAST TARGET
	conn := h.sessions.Attach(ws, registry.ConnectMetadata{
		RemoteAddr:  ws.RemoteAddr().String(),
		UserAgent:   r.UserAgent(),
		ConnectedAt: time.Now(),
	})
	// [GUARANTEED_CLEANUP] every exit path of the loop below detaches
	defer h.sessions.Detach(conn)

	l := h.logger.With(
		slog.String("conn_id", conn.GetID().String()),
		slog.String("remote_addr", ws.RemoteAddr().String()),
	)
	l.Info("GAME_SESSION_OPENED")

	// 3. MAIN READ LOOP
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Warn("GAME_SESSION_BROKEN", slog.Any("err", err))
			} else {
				l.Info("GAME_SESSION_CLOSED")
			}
			return
		}

		if mt != websocket.BinaryMessage {
			l.Debug("GAME_FRAME_SKIPPED", slog.Int("message_type", mt))
			continue
		}

		// A bad frame never ends the session.
		if err := h.ingester.HandleFrame(r.Context(), data); err != nil {
			l.Warn("GAME_FRAME_REJECTED", slog.Any("err", err), slog.Int("bytes", len(data)))
		}
	}
}
