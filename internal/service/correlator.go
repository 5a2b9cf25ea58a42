package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/webitel/liveapi-bridge/internal/domain/store"
)

// Correlator pairs replies with outstanding requests. The game protocol
// carries no request id, so waiters queue per reply type and the oldest
// waiter takes the next reply of that type.
type Correlator struct {
	mu      sync.Mutex
	waiters map[string][]*waiter
}

type waiter struct {
	id uuid.UUID
	ch chan store.Value
}

func NewCorrelator() *Correlator {
	return &Correlator{waiters: make(map[string][]*waiter)}
}

// Register queues a one-shot waiter for replies stored under key. The
// returned cancel func must be called once the caller stops waiting.
func (c *Correlator) Register(key string, id uuid.UUID) (<-chan store.Value, func()) {
	w := &waiter{id: id, ch: make(chan store.Value, 1)}

	c.mu.Lock()
	c.waiters[key] = append(c.waiters[key], w)
	c.mu.Unlock()

	return w.ch, func() { c.remove(key, w) }
}

// Resolve hands value to the oldest waiter for key. It reports whether
// anyone was waiting.
func (c *Correlator) Resolve(key string, value store.Value) (uuid.UUID, bool) {
	c.mu.Lock()
	queue := c.waiters[key]
	if len(queue) == 0 {
		c.mu.Unlock()
		return uuid.Nil, false
	}
	w := queue[0]
	if len(queue) == 1 {
		delete(c.waiters, key)
	} else {
		c.waiters[key] = queue[1:]
	}
	c.mu.Unlock()

	w.ch <- value
	return w.id, true
}

// Pending counts waiters for key.
func (c *Correlator) Pending(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters[key])
}

func (c *Correlator) remove(key string, target *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.waiters[key]
	for i, w := range queue {
		if w == target {
			queue = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(c.waiters, key)
	} else {
		c.waiters[key] = queue
	}
}
