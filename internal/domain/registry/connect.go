package registry

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrConnClosed = errors.New("registry: connection closed")

// Interface guard
var (
	_ Connector = (*connect)(nil)
	_ Transport = (*websocket.Conn)(nil)
)

// Transport is the slice of *websocket.Conn the registry writes through.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
	RemoteAddr() net.Addr
}

// [CONNECTOR] THE INTERFACE FOR EXTERNAL LAYERS (REGISTRY/HANDLERS)
type Connector interface {
	GetID() uuid.UUID
	Send(ctx context.Context, data []byte) error
	Close() error
	Metadata() ConnectMetadata
	Stats() ConnectStats
}

// [METADATA] EXPORTED FOR TRANSPORT AND ANALYTICS LAYERS
type ConnectMetadata struct {
	RemoteAddr  string
	UserAgent   string
	ConnectedAt time.Time
}

type ConnectStats struct {
	Sent   uint64
	Failed uint64
}

// [CONNECT] CONCRETE IMPLEMENTATION (UNEXPORTED TO FORCE INTERFACE USAGE)
type connect struct {
	id        uuid.UUID
	transport Transport
	metadata  ConnectMetadata

	writeMu   sync.Mutex // [SINGLE_WRITER] gorilla allows one concurrent writer
	closeOnce sync.Once  // [PROTECTION]
	closed    atomic.Bool
	closeErr  error

	sent   atomic.Uint64
	failed atomic.Uint64
}

func NewConnector(t Transport, meta ConnectMetadata) Connector {
	if meta.ConnectedAt.IsZero() {
		meta.ConnectedAt = time.Now()
	}
	if meta.RemoteAddr == "" && t.RemoteAddr() != nil {
		meta.RemoteAddr = t.RemoteAddr().String()
	}

	return &connect{
		id:        uuid.New(),
		transport: t,
		metadata:  meta,
	}
}

func (c *connect) GetID() uuid.UUID          { return c.id }
func (c *connect) Metadata() ConnectMetadata { return c.metadata }

func (c *connect) Stats() ConnectStats {
	return ConnectStats{Sent: c.sent.Load(), Failed: c.failed.Load()}
}

// Send writes one binary frame. The ctx deadline becomes the write deadline.
func (c *connect) Send(ctx context.Context, data []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.transport.SetWriteDeadline(deadline); err != nil {
		c.failed.Add(1)
		return err
	}

	if err := c.transport.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.failed.Add(1)
		return err
	}

	c.sent.Add(1)
	return nil
}

// Close is idempotent; repeated calls return the first result.
func (c *connect) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.transport.Close()
	})
	return c.closeErr
}
