package ws

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"chatline/chatline/utils/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger()
	os.Exit(m.Run())
}

func drainFrame(t *testing.T, c *Client) *Frame {
	t.Helper()
	select {
	case data := <-c.SendChan():
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return &f
	default:
		return nil
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil, "joy")
	b := NewClient(hub, nil, "louie")

	hub.Register(a)
	hub.Register(b)
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unregister(a)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}

	// Unregistering an already-removed client is a no-op.
	hub.Unregister(a)
	if hub.ClientCount() != 1 {
		t.Fatal("double unregister changed the registry")
	}
}

func TestBroadcastReachesEveryoneButExcluded(t *testing.T) {
	hub := NewHub()
	sender := NewClient(hub, nil, "joy")
	other1 := NewClient(hub, nil, "louie")
	other2 := NewClient(hub, nil, "pat")
	for _, c := range []*Client{sender, other1, other2} {
		hub.Register(c)
	}

	hub.Broadcast(EventUserTyping, map[string]string{"username": "joy"}, sender)

	if f := drainFrame(t, sender); f != nil {
		t.Error("excluded sender must not receive the frame")
	}
	for _, c := range []*Client{other1, other2} {
		f := drainFrame(t, c)
		if f == nil {
			t.Fatal("expected a frame")
		}
		if f.Event != EventUserTyping {
			t.Errorf("unexpected event %q", f.Event)
		}
	}
}

func TestBroadcastWithoutExcludeIncludesEveryone(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil, "joy")
	b := NewClient(hub, nil, "louie")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(EventMessageSeen, map[string]int64{"message_id": 1}, nil)

	for _, c := range []*Client{a, b} {
		if f := drainFrame(t, c); f == nil || f.Event != EventMessageSeen {
			t.Fatal("every client must receive the frame")
		}
	}
}

func TestSlowConsumerDropsFrameWithoutBlocking(t *testing.T) {
	hub := NewHub()
	slow := NewClient(hub, nil, "joy")
	healthy := NewClient(hub, nil, "louie")
	hub.Register(slow)
	hub.Register(healthy)

	// Fill the slow client's buffer to capacity.
	for i := 0; i < sendBuffer; i++ {
		if !slow.trySend([]byte("x")) {
			t.Fatalf("buffer filled early at %d", i)
		}
	}

	// Would hang the test (and trip the timeout) if a full buffer blocked
	// delivery to the other clients.
	hub.Broadcast(EventReceiveMessage, map[string]string{"message": "hi"}, nil)

	if f := drainFrame(t, healthy); f == nil || f.Event != EventReceiveMessage {
		t.Fatal("healthy client must still receive the frame")
	}
}

func TestUnregisterClosesSendQueue(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, nil, "joy")
	hub.Register(c)
	hub.Unregister(c)

	if c.trySend([]byte("late")) {
		t.Error("send after unregister must fail")
	}
	if _, open := <-c.SendChan(); open {
		t.Error("send queue must be closed")
	}

	// A broadcast after disconnect must not panic on the closed channel.
	hub.Broadcast(EventReceiveMessage, map[string]string{"message": "hi"}, nil)
}

func TestDispatchTable(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, nil, "joy")

	var gotData string
	hub.Handle("ping", func(ctx context.Context, client *Client, data json.RawMessage) {
		if client != c {
			t.Error("handler received wrong client")
		}
		gotData = string(data)
	})

	hub.dispatch(context.Background(), c, &Frame{Event: "ping", Data: json.RawMessage(`{"n":1}`)})
	if gotData != `{"n":1}` {
		t.Errorf("handler saw %q", gotData)
	}

	// Unknown events are logged and ignored.
	hub.dispatch(context.Background(), c, &Frame{Event: "nope"})
}

func TestEncodeFrame(t *testing.T) {
	data, err := EncodeFrame(EventUserTyping, map[string]string{"username": "joy"})
	if err != nil {
		t.Fatalf("EncodeFrame err: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("frame does not round-trip: %v", err)
	}
	if f.Event != EventUserTyping {
		t.Errorf("unexpected event %q", f.Event)
	}
	var payload map[string]string
	if err := json.Unmarshal(f.Data, &payload); err != nil || payload["username"] != "joy" {
		t.Errorf("unexpected data %s", f.Data)
	}

	empty, err := EncodeFrame(EventTyping, nil)
	if err != nil {
		t.Fatalf("EncodeFrame nil payload err: %v", err)
	}
	if err := json.Unmarshal(empty, &f); err != nil || f.Event != EventTyping {
		t.Errorf("bad empty frame %s", empty)
	}
}
