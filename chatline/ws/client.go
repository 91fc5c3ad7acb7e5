package ws

import (
	"chatline/chatline/utils/logging"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 256
)

// Client is one live, authenticated connection. It exists only in memory
// for the connection's lifetime and is never referenced by stored records.
type Client struct {
	SessionID string
	Username  string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	return &Client{
		SessionID: uuid.NewString(),
		Username:  username,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
}

// SendChan exposes the outbound queue read-only, for the write loop and for
// tests that assert on delivered frames.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Send encodes a single frame addressed to this client only.
func (c *Client) Send(event string, payload interface{}) {
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logging.ErrorLogger.Error("send encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	c.trySend(data)
}

// trySend queues data without blocking. A full buffer means this client is
// not keeping up; the frame is dropped for it and nobody else is affected.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		logging.AppLogger.Warn("send buffer full, dropping frame",
			zap.String("session_id", c.SessionID),
			zap.String("username", c.Username),
		)
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WriteLoop drains the send queue onto the connection. It returns when the
// queue is closed by Unregister or when a write fails.
func (c *Client) WriteLoop(ctx context.Context) {
	for data := range c.send {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.conn.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

// ReadLoop reads frames until the connection drops and dispatches each one
// through the hub's handler table. It unregisters the client on the way out,
// so a disconnect mid-delivery just means no further frames.
func (c *Client) ReadLoop(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusInternalError, "closing")
	}()

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			logging.AppLogger.Warn("unparseable frame",
				zap.String("session_id", c.SessionID),
				zap.Error(err),
			)
			continue
		}
		c.hub.dispatch(ctx, c, &frame)
	}
}
