// Package api is the HTTP facade over the bridge: command routes, lobby
// queries, the raw store and the live event feeds.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
	"github.com/webitel/liveapi-bridge/internal/service"
	"github.com/webitel/liveapi-bridge/internal/service/dto"
)

const maxBody = 1 << 16

// Reporter produces the current health report.
type Reporter interface {
	Report(ctx context.Context) model.HealthReport
}

// Interface guard
var _ Reporter = (*service.HealthAggregator)(nil)

type Handler struct {
	intake    *service.Intake
	requester *service.Requester
	autostart *service.Autostart
	store     *store.Store
	health    Reporter
	events    http.Handler
	poll      http.HandlerFunc
	limiter   *rate.Limiter
	logger    *slog.Logger
}

type Deps struct {
	Intake    *service.Intake
	Requester *service.Requester
	Autostart *service.Autostart
	Store     *store.Store
	Health    Reporter
	Events    http.Handler
	Poll      http.HandlerFunc
	Limiter   *rate.Limiter
	Logger    *slog.Logger
}

func NewHandler(d Deps) *Handler {
	limiter := d.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Handler{
		intake:    d.Intake,
		requester: d.Requester,
		autostart: d.Autostart,
		store:     d.Store,
		health:    d.Health,
		events:    d.Events,
		poll:      d.Poll,
		limiter:   limiter,
		logger:    d.Logger,
	}
}

// Routes builds the router. Every intake action is a POST route named
// after it. Lobby create/leave also answer GET; the get_* names answer
// GET with the game's reply instead of the command echo.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/status", h.status)
	r.Get("/get_data", h.getData)
	r.Get("/get_data/{type}", h.getData)
	if h.events != nil {
		r.Handle("/events", h.events)
	}
	if h.poll != nil {
		r.Get("/events/poll", h.poll)
	}

	r.Get("/get_players", h.getPlayers)
	r.Get("/get_settings", h.getSettings)
	r.Get("/get_legend_ban_status", h.getLegendBanStatus)
	r.Get("/get_player_names", h.playerField("name"))
	r.Get("/get_hardware_names", h.playerField("hardwareName"))
	r.Get("/get_nucleus_hashes", h.playerField("nucleusHash"))

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(h.limiter))

		r.Get("/send_discord_token", h.sendDiscordToken)
		r.Post("/schedule_autostart", h.scheduleAutostart)

		for _, a := range h.intake.Actions() {
			handler := h.command(a.String())
			r.Post("/"+a.String(), handler)
			if noBody(a) {
				r.Get("/"+a.String(), handler)
			}
		}
	})

	return r
}

func noBody(a liveapi.Action) bool {
	return a == liveapi.ActionCreateLobby || a == liveapi.ActionLeaveLobby
}

// command answers with the echoed command, even when no game was reached.
func (h *Handler) command(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		d, err := h.intake.Execute(r.Context(), action, body)
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err)
			return
		case errors.Is(err, service.ErrUnknownAction):
			writeError(w, http.StatusNotFound, err)
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, d.Echo())
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Report(r.Context()))
}

// getData returns one stored value, or the whole store without a type.
func (h *Handler) getData(w http.ResponseWriter, r *http.Request) {
	if typeName := chi.URLParam(r, "type"); typeName != "" {
		v, _ := h.store.Read(r.Context(), typeName)
		if v == nil {
			v = store.Value{}
		}
		writeJSON(w, http.StatusOK, v)
		return
	}
	writeJSON(w, http.StatusOK, h.store.ReadAll(r.Context()))
}

func (h *Handler) getPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.requester.FetchLobbyPlayers(r.Context()))
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.requester.GetSettings(r.Context()))
}

func (h *Handler) getLegendBanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.requester.GetLegendBanStatus(r.Context()))
}

func (h *Handler) playerField(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.requester.PlayerField(r.Context(), field))
	}
}

func (h *Handler) sendDiscordToken(w http.ResponseWriter, r *http.Request) {
	token, ok := h.autostart.SendLobbyToken(r.Context())
	if token == "" {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if !ok {
		h.logger.Warn("LOBBY_TOKEN_NOT_POSTED")
	}
	writeJSON(w, http.StatusOK, dto.LobbyKey{Key: token})
}

func (h *Handler) scheduleAutostart(w http.ResponseWriter, r *http.Request) {
	var req dto.ScheduleAutostart
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, ok := h.autostart.Schedule(r.Context(), req)
	if token == "" {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if !ok {
		h.logger.Warn("AUTOSTART_NOT_POSTED", slog.String("lobby_channel", req.LobbyChannelName))
	}
	writeJSON(w, http.StatusOK, dto.LobbyKey{Key: token})
}
