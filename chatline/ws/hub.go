// Package ws holds the live-connection registry and the broadcast fan-out
// path for the chat channel.
package ws

import (
	"chatline/chatline/utils/logging"
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub tracks every currently connected, authenticated client and fans
// events out to them. It owns nothing durable: a client exists in the hub
// only for the lifetime of its connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	// Inbound event name -> handler. Populated once during startup,
	// read-only afterwards, so dispatch needs no locking.
	handlers map[string]EventHandler
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		handlers: make(map[string]EventHandler),
	}
}

// Handle installs the handler for an inbound event name. Must be called
// before any client connects.
func (h *Hub) Handle(event string, fn EventHandler) {
	h.handlers[event] = fn
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	logging.AppLogger.Info("client registered",
		zap.String("session_id", c.SessionID),
		zap.String("username", c.Username),
		zap.Int("clients", count),
	)
}

// Unregister removes the client and closes its send channel. Calling it for
// a client that was already removed is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	c.close()
	logging.AppLogger.Info("client unregistered",
		zap.String("session_id", c.SessionID),
		zap.String("username", c.Username),
		zap.Int("clients", count),
	)
}

// Broadcast delivers payload to every connected client except exclude (pass
// nil to include everyone). Delivery is fire-and-forget: a client whose send
// buffer is full simply misses the frame, and nothing is awaited.
func (h *Hub) Broadcast(event string, payload interface{}, exclude *Client) {
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logging.ErrorLogger.Error("broadcast encode failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c == exclude {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.trySend(data)
	}
}

// ClientCount reports how many clients are currently registered.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dispatch(ctx context.Context, c *Client, frame *Frame) {
	handler, ok := h.handlers[frame.Event]
	if !ok {
		logging.AppLogger.Warn("unknown event",
			zap.String("event", frame.Event),
			zap.String("session_id", c.SessionID),
		)
		return
	}
	handler(ctx, c, frame.Data)
}
