/*
Package store keeps the latest decoded value per message type.

Writers replace whole values under a type key; readers get the last
value written or an empty map. Every write wakes every waiter: the
update signal is a channel that is closed and swapped on each write.
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Value = map[string]any

var ErrBackend = errors.New("store: backend failure")

// Backend persists values. Implementations must be safe for concurrent use.
type Backend interface {
	Put(ctx context.Context, key string, value Value) error
	Get(ctx context.Context, key string) (Value, bool, error)
	All(ctx context.Context) (map[string]Value, error)
	Len(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

type Store struct {
	backend Backend
	logger  *slog.Logger

	// [WRITE_SERIALIZATION] guards the put + signal swap pair.
	mu      sync.Mutex
	updated chan struct{}

	writes atomic.Uint64
}

func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		updated: make(chan struct{}),
	}
}

// Write replaces the value under key and wakes all waiters.
func (s *Store) Write(ctx context.Context, key string, value Value) error {
	s.mu.Lock()
	if err := s.backend.Put(ctx, key, value); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: put %s: %v", ErrBackend, key, err)
	}
	prev := s.updated
	s.updated = make(chan struct{})
	s.mu.Unlock()

	s.writes.Add(1)
	close(prev)
	return nil
}

// Read never fails: a missing key or a backend error both yield an empty map.
func (s *Store) Read(ctx context.Context, key string) (Value, bool) {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error("STORE_READ_FAILED", slog.String("key", key), slog.Any("err", err))
		return Value{}, false
	}
	if !ok || v == nil {
		return Value{}, false
	}
	return v, true
}

// ReadAll returns a snapshot; later writes do not show through it.
func (s *Store) ReadAll(ctx context.Context) map[string]Value {
	all, err := s.backend.All(ctx)
	if err != nil {
		s.logger.Error("STORE_READ_ALL_FAILED", slog.Any("err", err))
		return map[string]Value{}
	}
	return all
}

func (s *Store) Len(ctx context.Context) int {
	n, err := s.backend.Len(ctx)
	if err != nil {
		s.logger.Error("STORE_LEN_FAILED", slog.Any("err", err))
		return 0
	}
	return n
}

// Available reports whether the backend answers.
func (s *Store) Available(ctx context.Context) bool {
	return s.backend.Ping(ctx) == nil
}

// Writes is the number of successful writes since start.
func (s *Store) Writes() uint64 {
	return s.writes.Load()
}

// Watch returns a channel closed by the next write. Capture it before
// triggering the action whose result you wait for.
func (s *Store) Watch() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// AwaitUpdate blocks until any write, the timeout or ctx cancellation.
// It reports whether a write happened.
func (s *Store) AwaitUpdate(ctx context.Context, timeout time.Duration) bool {
	return Wait(ctx, s.Watch(), timeout)
}

// Wait blocks on a channel obtained from Watch.
func Wait(ctx context.Context, updated <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-updated:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}
