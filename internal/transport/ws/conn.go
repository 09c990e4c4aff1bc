package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// SocketConn wraps a gorilla connection with serialized writes and
// idempotent close.
type SocketConn struct {
	conn      *websocket.Conn
	sendMu    chan struct{}
	closeOnce sync.Once
	closed    chan struct{}
}

func NewSocketConn(c *websocket.Conn) *SocketConn {
	return &SocketConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *SocketConn) Send(v any) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	return c.conn.WriteJSON(v)
}

// Close is safe to call from both the handler teardown and the fanout
// failure path; only the first call closes the socket.
func (c *SocketConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// Closed reports whether Close has run; the write loop selects on it.
func (c *SocketConn) Closed() <-chan struct{} { return c.closed }

// Raw exposes the underlying connection for read-side configuration.
func (c *SocketConn) Raw() *websocket.Conn { return c.conn }
