package registry

import "time"

// Option defines a functional configuration type for the Hub.
type Option func(*Hub)

// WithSendTimeout bounds a single frame write. A connection that cannot
// take a frame within it is treated as dead.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.config.sendTimeout = d
		}
	}
}

// WithParallelism caps concurrent writes during one broadcast.
func WithParallelism(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.config.parallelism = n
		}
	}
}
