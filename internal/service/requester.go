package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

// RequestMode selects how a request waits for the game's reply.
type RequestMode string

const (
	// ModeCorrelated waits for the next reply of the expected type.
	ModeCorrelated RequestMode = config.RequestCorrelated
	// ModeAwait waits for any store write, then reads the expected key.
	ModeAwait RequestMode = config.RequestAwait
	// ModeDelay sleeps a fixed time, then reads the expected key.
	ModeDelay RequestMode = config.RequestDelay
)

// Requester emulates request/response over the fire-and-forget command
// channel. Every method returns an empty result on timeout.
type Requester struct {
	commander  *Commander
	store      *store.Store
	correlator *Correlator
	mode       RequestMode
	timeout    time.Duration
	delay      time.Duration
	logger     *slog.Logger
}

type RequesterOption func(*Requester)

func WithRequestMode(mode RequestMode) RequesterOption {
	return func(r *Requester) { r.mode = mode }
}

func WithRequestTimeout(d time.Duration) RequesterOption {
	return func(r *Requester) { r.timeout = d }
}

func WithRequestDelay(d time.Duration) RequesterOption {
	return func(r *Requester) { r.delay = d }
}

func NewRequester(commander *Commander, st *store.Store, correlator *Correlator, logger *slog.Logger, opts ...RequesterOption) *Requester {
	r := &Requester{
		commander:  commander,
		store:      st,
		correlator: correlator,
		mode:       ModeCorrelated,
		timeout:    5 * time.Second,
		delay:      500 * time.Millisecond,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Requester) Mode() RequestMode { return r.mode }

// FetchLobbyPlayers asks the game for the lobby roster.
func (r *Requester) FetchLobbyPlayers(ctx context.Context) store.Value {
	return r.request(ctx, r.commander.Builder().GetLobbyPlayers())
}

func (r *Requester) GetSettings(ctx context.Context) store.Value {
	return r.request(ctx, r.commander.Builder().GetSettings())
}

func (r *Requester) GetLegendBanStatus(ctx context.Context) store.Value {
	return r.request(ctx, r.commander.Builder().GetLegendBanStatus())
}

// GetLobbyToken fetches the roster and extracts the lobby's player token.
func (r *Requester) GetLobbyToken(ctx context.Context) (string, bool) {
	roster := r.FetchLobbyPlayers(ctx)
	token, _ := roster["playerToken"].(string)
	return token, token != ""
}

// LobbyPlayers returns the stored roster, fetching it when none is held.
func (r *Requester) LobbyPlayers(ctx context.Context) []map[string]any {
	roster, _ := r.store.Read(ctx, liveapi.KindLobbyPlayers.FullName())
	players := playersOf(roster)
	if len(players) > 0 {
		return players
	}
	return playersOf(r.FetchLobbyPlayers(ctx))
}

// PlayerField projects one field out of every lobby player.
func (r *Requester) PlayerField(ctx context.Context, field string) []any {
	players := r.LobbyPlayers(ctx)
	out := make([]any, 0, len(players))
	for _, p := range players {
		out = append(out, p[field])
	}
	return out
}

func (r *Requester) request(ctx context.Context, cmd *liveapi.Command) store.Value {
	key := cmd.Action.Reply().FullName()
	start := time.Now()

	var (
		result store.Value
		ok     bool
	)
	switch r.mode {
	case ModeAwait:
		result, ok = r.await(ctx, cmd, key)
	case ModeDelay:
		result, ok = r.sleep(ctx, cmd, key)
	default:
		result, ok = r.correlated(ctx, cmd, key)
	}

	if !ok {
		r.logger.Warn("REQUEST_NO_REPLY",
			slog.String("action", cmd.Action.String()),
			slog.String("command_id", cmd.ID.String()),
			slog.String("mode", string(r.mode)),
			slog.Duration("elapsed", time.Since(start)),
		)
		return store.Value{}
	}

	r.logger.Debug("REQUEST_REPLIED",
		slog.String("action", cmd.Action.String()),
		slog.String("command_id", cmd.ID.String()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result
}

func (r *Requester) correlated(ctx context.Context, cmd *liveapi.Command, key string) (store.Value, bool) {
	reply, cancel := r.correlator.Register(key, cmd.ID)
	defer cancel()

	if r.commander.Send(ctx, cmd).Reached == 0 {
		return nil, false
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case v := <-reply:
		return v, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// await wakes on any write, so a reply to an unrelated key also ends the
// wait. The read that follows may then see a stale or missing value.
func (r *Requester) await(ctx context.Context, cmd *liveapi.Command, key string) (store.Value, bool) {
	updated := r.store.Watch()

	if r.commander.Send(ctx, cmd).Reached == 0 {
		return nil, false
	}
	if !store.Wait(ctx, updated, r.timeout) {
		return nil, false
	}

	return r.store.Read(ctx, key)
}

func (r *Requester) sleep(ctx context.Context, cmd *liveapi.Command, key string) (store.Value, bool) {
	if r.commander.Send(ctx, cmd).Reached == 0 {
		return nil, false
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, false
	}

	return r.store.Read(ctx, key)
}

func playersOf(roster store.Value) []map[string]any {
	raw, _ := roster["players"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, p := range raw {
		if m, ok := p.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
