package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Game.Addr)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "apexlegends", cfg.PubSub.Topic)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, RequestCorrelated, cfg.Requests.Mode)
	assert.Equal(t, 5*time.Second, cfg.Requests.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Health.StreamingWindow)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
game:
  addr: ":9777"
requests:
  mode: await
  timeout: 2s
`), 0o600))

	t.Setenv("LIVEAPI_REQUESTS_MODE", "delay")

	cfg, v, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9777", cfg.Game.Addr)
	assert.Equal(t, RequestDelay, cfg.Requests.Mode)
	assert.Equal(t, 2*time.Second, cfg.Requests.Timeout)
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestValidate_RejectsUnknownEnums(t *testing.T) {
	t.Setenv("LIVEAPI_STORE_BACKEND", "etcd")
	t.Setenv("LIVEAPI_PUBSUB_DRIVER", "kafka")

	_, _, err := LoadConfig("")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "pubsub.driver")
}

func TestValidate_RejectsBadLevel(t *testing.T) {
	t.Setenv("LIVEAPI_LOG_LEVEL", "loud")

	_, _, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
