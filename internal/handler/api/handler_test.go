package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
	"github.com/webitel/liveapi-bridge/internal/domain/store"
	"github.com/webitel/liveapi-bridge/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const roster = `{"playerToken":"tok-1","players":[
	{"name":"alpha","hardwareName":"PC","nucleusHash":"n-a"},
	{"name":"bravo","hardwareName":"PS4","nucleusHash":"n-b"}
]}`

// echoGame answers every command with a fixed frame through the bridge.
type echoGame struct {
	mu     sync.Mutex
	sent   int
	answer func()
}

func (g *echoGame) WriteMessage(int, []byte) error {
	g.mu.Lock()
	g.sent++
	g.mu.Unlock()
	if g.answer != nil {
		go g.answer()
	}
	return nil
}
func (g *echoGame) SetWriteDeadline(time.Time) error { return nil }
func (g *echoGame) Close() error                     { return nil }
func (g *echoGame) RemoteAddr() net.Addr             { return &net.TCPAddr{} }

type nopFanout struct{}

func (nopFanout) Publish(context.Context, string, map[string]any) bool { return true }
func (nopFanout) Status(time.Time) model.FanoutStatus                 { return model.FanoutStatus{} }

type sentNotes struct {
	mu    sync.Mutex
	lines []string
}

func (n *sentNotes) Notify(_ context.Context, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lines = append(n.lines, content)
	return nil
}

type fixture struct {
	srv   *httptest.Server
	hub   *registry.Hub
	store *store.Store
	notes *sentNotes
}

func newFixture(t *testing.T, limiter *rate.Limiter, withGame bool) *fixture {
	t.Helper()

	catalog := liveapi.Default()
	hub := registry.NewHub(discard)
	st := store.New(store.NewMemoryBackend(), discard)
	corr := service.NewCorrelator()
	commander := service.NewCommander(liveapi.NewBuilder(catalog, "psk"), hub, discard)
	bridge := service.NewBridge(catalog, liveapi.NewDecoder(catalog, discard), st, nopFanout{}, corr, discard)
	requester := service.NewRequester(commander, st, corr, discard, service.WithRequestTimeout(time.Second))
	notes := &sentNotes{}

	if withGame {
		frame, err := catalog.Frame(liveapi.KindLobbyPlayers.FullName(), []byte(roster))
		require.NoError(t, err)
		game := &echoGame{answer: func() {
			time.Sleep(5 * time.Millisecond)
			_ = bridge.HandleFrame(context.Background(), frame)
		}}
		hub.Register(registry.NewConnector(game, registry.ConnectMetadata{}))
	}

	h := NewHandler(Deps{
		Intake:    service.NewIntake(commander, discard),
		Requester: requester,
		Autostart: service.NewAutostart(requester, notes),
		Store:     st,
		Health:    service.NewHealthAggregator(hub, st, nopFanout{}),
		Limiter:   limiter,
		Logger:    discard,
	})

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Shutdown)
	return &fixture{srv: srv, hub: hub, store: st, notes: notes}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestCommandRoutes_Echo(t *testing.T) {
	f := newFixture(t, nil, false)

	code, body := f.do(t, http.MethodPost, "/set_ready", `{"isReady": true}`)
	require.Equal(t, http.StatusOK, code)

	var echo map[string]any
	require.NoError(t, json.Unmarshal(body, &echo))
	assert.Equal(t, true, echo["withAck"])
	assert.Equal(t, map[string]any{"isReady": true}, echo["customMatch_SetReady"])

	code, _ = f.do(t, http.MethodGet, "/create_lobby", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCommandRoutes_BadInput(t *testing.T) {
	f := newFixture(t, nil, false)

	code, _ := f.do(t, http.MethodPost, "/set_team", `{"teamId": "three"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/set_end_ring_exclusion", `{"sectionToExclude": "MOON"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCommandRoutes_RateLimited(t *testing.T) {
	f := newFixture(t, rate.NewLimiter(rate.Every(time.Hour), 1), false)

	code, _ := f.do(t, http.MethodPost, "/send_chat", `{"text": "one"}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodPost, "/send_chat", `{"text": "two"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)

	// reads are not limited
	code, _ = f.do(t, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestGetData(t *testing.T) {
	f := newFixture(t, nil, false)
	require.NoError(t, f.store.Write(context.Background(), "rtech.liveapi.GameStateChanged", store.Value{"state": "Playing"}))

	code, body := f.do(t, http.MethodGet, "/get_data/rtech.liveapi.GameStateChanged", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"state":"Playing"}`, string(body))

	_, body = f.do(t, http.MethodGet, "/get_data/rtech.liveapi.Nothing", "")
	assert.JSONEq(t, `{}`, string(body))

	_, body = f.do(t, http.MethodGet, "/get_data", "")
	assert.JSONEq(t, `{"rtech.liveapi.GameStateChanged":{"state":"Playing"}}`, string(body))
}

func TestLobbyQueries(t *testing.T) {
	f := newFixture(t, nil, true)

	code, body := f.do(t, http.MethodGet, "/get_players", "")
	require.Equal(t, http.StatusOK, code)
	var players map[string]any
	require.NoError(t, json.Unmarshal(body, &players))
	assert.Len(t, players["players"], 2)

	_, body = f.do(t, http.MethodGet, "/get_player_names", "")
	assert.JSONEq(t, `["alpha","bravo"]`, string(body))

	_, body = f.do(t, http.MethodGet, "/get_hardware_names", "")
	assert.JSONEq(t, `["PC","PS4"]`, string(body))

	_, body = f.do(t, http.MethodGet, "/get_nucleus_hashes", "")
	assert.JSONEq(t, `["n-a","n-b"]`, string(body))
}

func TestSendDiscordToken(t *testing.T) {
	f := newFixture(t, nil, true)

	code, body := f.do(t, http.MethodGet, "/send_discord_token", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"key":"tok-1"}`, string(body))
	assert.Equal(t, []string{"!schedule_autostart tok-1 false"}, f.notes.lines)
}

func TestScheduleAutostart(t *testing.T) {
	f := newFixture(t, nil, true)

	code, body := f.do(t, http.MethodPost, "/schedule_autostart", `{
		"lobby_channel_name": "scrims", "min_max_teams": "2-20", "min_max_team_size": 3,
		"time_to_wait": 300, "private_message": "glhf", "keep_autostart": true
	}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"key":"tok-1"}`, string(body))
	assert.Equal(t, []string{`!schedule_autostart "scrims" 2-20 3 300 "tok-1" "glhf" true`}, f.notes.lines)
}

func TestStatus(t *testing.T) {
	f := newFixture(t, nil, false)

	code, body := f.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, code)

	var report model.HealthReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, model.HealthError, report.Status)
	assert.Zero(t, report.Connections)
}
