package ws

import (
	"context"
	"encoding/json"
)

// Channel event names. Inbound events are dispatched through the Hub's
// handler table; outbound events are produced by broadcasts.
const (
	// client -> server
	EventSendMessage = "send_message"
	EventSendFile    = "send_file"
	EventTyping      = "typing"
	EventMarkSeen    = "mark_seen"

	// server -> client
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventMessageSeen    = "message_seen"
	EventHistory        = "history"
	EventError          = "error"
)

// Frame is the wire shape of every channel event, both directions:
// {"event": "...", "data": {...}}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals payload into a ready-to-send frame.
func EncodeFrame(event string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// EventHandler processes one inbound event from a connected client. data is
// the raw "data" member of the frame; handlers unmarshal their own payload.
type EventHandler func(ctx context.Context, c *Client, data json.RawMessage)
