package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// readWait is how long a page may stay silent. Every pong or message
	// restarts it.
	readWait = 60 * time.Second
	// pingPeriod must stay below readWait.
	pingPeriod = (readWait * 9) / 10
)

// Conn serializes writes to a WebSocket shared by the reader loop and the
// background join flows of a page.
type Conn struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	readWait time.Duration
}

// NewConn wraps conn.
func NewConn(conn *websocket.Conn) *Conn {
	return newConn(conn, readWait)
}

func newConn(conn *websocket.Conn, wait time.Duration) *Conn {
	c := &Conn{conn: conn, readWait: wait}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readWait))
	})
	return c
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func (c *Conn) ReadJSON(v interface{}) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.readWait))
	return c.conn.ReadJSON(v)
}

// Keepalive sends control pings until ctx is done or a ping fails. Browsers
// answer them without any page code, so an idle page outlives readWait.
func (c *Conn) Keepalive(ctx context.Context) {
	c.keepalive(ctx, pingPeriod)
}

func (c *Conn) keepalive(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
