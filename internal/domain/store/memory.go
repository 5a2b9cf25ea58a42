package store

import (
	"context"
	"maps"
	"sync"
)

// Interface guard
var _ Backend = (*MemoryBackend)(nil)

type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]Value
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]Value)}
}

func (m *MemoryBackend) Put(_ context.Context, key string, value Value) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) (Value, bool, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	return v, ok, nil
}

// All copies the key set. Values are shared: callers treat them as read-only.
func (m *MemoryBackend) All(_ context.Context) (map[string]Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

func (m *MemoryBackend) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values), nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
