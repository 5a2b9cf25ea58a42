package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type StoreSuite struct {
	suite.Suite
	backend func() Backend
	store   *Store
	ctx     context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New(s.backend(), discard)
}

func (s *StoreSuite) TestWriteThenRead() {
	err := s.store.Write(s.ctx, "rtech.liveapi.Init", Value{"gameVersion": "v1", "platform": "PC"})
	s.Require().NoError(err)

	v, ok := s.store.Read(s.ctx, "rtech.liveapi.Init")
	s.True(ok)
	s.Equal("v1", v["gameVersion"])
	s.Equal(1, s.store.Len(s.ctx))
}

func (s *StoreSuite) TestOverwrite() {
	s.Require().NoError(s.store.Write(s.ctx, "k", Value{"a": "1"}))
	s.Require().NoError(s.store.Write(s.ctx, "k", Value{"b": "2"}))

	v, _ := s.store.Read(s.ctx, "k")
	s.NotContains(v, "a")
	s.Equal("2", v["b"])
}

func (s *StoreSuite) TestReadUnsetIsEmpty() {
	v, ok := s.store.Read(s.ctx, "never.written")
	s.False(ok)
	s.NotNil(v)
	s.Empty(v)
}

func (s *StoreSuite) TestReadAllSnapshot() {
	s.Require().NoError(s.store.Write(s.ctx, "a", Value{"n": "1"}))
	snap := s.store.ReadAll(s.ctx)

	s.Require().NoError(s.store.Write(s.ctx, "b", Value{"n": "2"}))
	s.Len(snap, 1)
	s.Len(s.store.ReadAll(s.ctx), 2)
}

func TestStoreMemory(t *testing.T) {
	suite.Run(t, &StoreSuite{backend: func() Backend { return NewMemoryBackend() }})
}

func TestStoreRedis(t *testing.T) {
	addr := os.Getenv("LIVEAPI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIVEAPI_TEST_REDIS_ADDR not set")
	}

	suite.Run(t, &StoreSuite{backend: func() Backend {
		key := "liveapi:test:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano)
		client := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { client.Del(context.Background(), key) })
		return NewRedisBackend(client, key)
	}})
}

func TestAwaitUpdate_WakesOnAnyKey(t *testing.T) {
	s := New(NewMemoryBackend(), discard)
	ctx := context.Background()

	woke := make(chan bool, 1)
	ready := make(chan struct{})
	go func() {
		updated := s.Watch()
		close(ready)
		woke <- Wait(ctx, updated, 2*time.Second)
	}()

	<-ready
	require.NoError(t, s.Write(ctx, "unrelated.key", Value{"x": true}))

	select {
	case ok := <-woke:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestAwaitUpdate_WakesAllWaiters(t *testing.T) {
	s := New(NewMemoryBackend(), discard)
	ctx := context.Background()
	updated := s.Watch()

	var wg sync.WaitGroup
	results := make([]bool, 5)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Wait(ctx, updated, 2*time.Second)
		}()
	}

	require.NoError(t, s.Write(ctx, "k", Value{}))
	wg.Wait()

	for _, r := range results {
		assert.True(t, r)
	}
}

func TestAwaitUpdate_Timeout(t *testing.T) {
	s := New(NewMemoryBackend(), discard)
	assert.False(t, s.AwaitUpdate(context.Background(), 20*time.Millisecond))
}

func TestAwaitUpdate_ContextCancel(t *testing.T) {
	s := New(NewMemoryBackend(), discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.AwaitUpdate(ctx, time.Second))
}

type failingBackend struct{ *MemoryBackend }

var errDown = errors.New("down")

func (f *failingBackend) Put(context.Context, string, Value) error { return errDown }

func (f *failingBackend) Get(context.Context, string) (Value, bool, error) {
	return nil, false, errDown
}

func TestStore_BackendErrors(t *testing.T) {
	s := New(&failingBackend{MemoryBackend: NewMemoryBackend()}, discard)
	ctx := context.Background()
	updated := s.Watch()

	err := s.Write(ctx, "k", Value{"a": 1})
	assert.ErrorIs(t, err, ErrBackend)

	v, ok := s.Read(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, v)

	// A failed write wakes nobody.
	select {
	case <-updated:
		t.Fatal("failed write signalled an update")
	default:
	}
}
