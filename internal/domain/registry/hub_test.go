package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeTransport struct {
	mu       sync.Mutex
	frames   [][]byte
	failWith error
	closed   atomic.Int32
}

func (f *fakeTransport) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeTransport) Close() error {
	f.closed.Add(1)
	return nil
}

func (f *fakeTransport) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (f *fakeTransport) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestHub_RegisterIdempotent(t *testing.T) {
	h := NewHub(discard)
	conn := NewConnector(&fakeTransport{}, ConnectMetadata{})

	h.Register(conn)
	h.Register(conn)
	assert.Equal(t, 1, h.Len())

	assert.True(t, h.Unregister(conn))
	assert.False(t, h.Unregister(conn))
	assert.Equal(t, 0, h.Len())
}

func TestHub_BroadcastCallerCanceledKeepsConnections(t *testing.T) {
	h := NewHub(discard)
	a, b := &fakeTransport{}, &fakeTransport{}
	h.Register(NewConnector(a, ConnectMetadata{}))
	h.Register(NewConnector(b, ConnectMetadata{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reached := h.Broadcast(ctx, []byte("cmd"))

	assert.Equal(t, 2, reached)
	assert.Equal(t, 2, h.Len())
	assert.Zero(t, a.closed.Load())
	assert.Zero(t, b.closed.Load())
	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
}

func TestHub_BroadcastEmpty(t *testing.T) {
	assert.Equal(t, 0, NewHub(discard).Broadcast(context.Background(), []byte("x")))
}

func TestHub_BroadcastPrunesFailures(t *testing.T) {
	const n, m = 5, 2

	h := NewHub(discard, WithParallelism(2))
	transports := make([]*fakeTransport, n)
	for i := range transports {
		transports[i] = &fakeTransport{}
		if i < m {
			transports[i].failWith = errors.New("broken pipe")
		}
		h.Register(NewConnector(transports[i], ConnectMetadata{}))
	}

	reached := h.Broadcast(context.Background(), []byte{0x01})
	assert.Equal(t, n-m, reached)
	assert.Equal(t, n-m, h.Len())

	for i, tr := range transports {
		if i < m {
			assert.Equal(t, int32(1), tr.closed.Load(), "failed transport %d not closed", i)
			assert.Zero(t, tr.received())
		} else {
			assert.Zero(t, tr.closed.Load())
			assert.Equal(t, 1, tr.received())
		}
	}

	// Survivors keep receiving.
	assert.Equal(t, n-m, h.Broadcast(context.Background(), []byte{0x02}))
}

func TestConnector_CloseIdempotent(t *testing.T) {
	tr := &fakeTransport{}
	conn := NewConnector(tr, ConnectMetadata{})

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.Equal(t, int32(1), tr.closed.Load())

	err := conn.Send(context.Background(), []byte("late"))
	assert.ErrorIs(t, err, ErrConnClosed)
	assert.Equal(t, "127.0.0.1:40000", conn.Metadata().RemoteAddr)
}

func TestConnector_ConcurrentSends(t *testing.T) {
	tr := &fakeTransport{}
	conn := NewConnector(tr, ConnectMetadata{})

	var wg sync.WaitGroup
	for _i := 0; _i < 50; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = conn.Send(context.Background(), []byte("frame"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.received())
	assert.Equal(t, uint64(50), conn.Stats().Sent)
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub(discard)
	tr := &fakeTransport{}
	h.Register(NewConnector(tr, ConnectMetadata{}))

	h.Shutdown()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, int32(1), tr.closed.Load())
}
