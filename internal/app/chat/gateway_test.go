package chat

import (
	"encoding/json"
	"testing"
)

// drain reads every queued delivery off a client's send channel.
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-c.send:
			out = append(out, b)
		default:
			return out
		}
	}
}

// TestGatewayAddRemove verifies registry bookkeeping and that removing a
// connection twice is a safe no-op.
func TestGatewayAddRemove(t *testing.T) {
	g := NewGateway()

	c := NewClient("conn-1", nil, g, nil)
	g.Add(c)
	if g.Len() != 1 {
		t.Fatalf("Len = %d after Add, want 1", g.Len())
	}

	g.Remove("conn-1")
	if g.Len() != 0 {
		t.Fatalf("Len = %d after Remove, want 0", g.Len())
	}

	g.Remove("conn-1")
	g.Remove("conn-ghost")
}

// TestGatewayFanOutTargets verifies the three delivery target selectors.
func TestGatewayFanOutTargets(t *testing.T) {
	g := NewGateway()

	clients := map[string]*Client{}
	for _, id := range []string{"conn-1", "conn-2", "conn-3"} {
		c := NewClient(id, nil, g, nil)
		clients[id] = c
		g.Add(c)
	}

	evt := Event{Type: TypeUserLeft, Payload: UserLeftPayload{Username: "Alice"}}

	g.ToAll(evt)
	for id, c := range clients {
		if got := len(drain(c)); got != 1 {
			t.Errorf("ToAll delivered %d events to %s, want 1", got, id)
		}
	}

	g.ToAllExcept("conn-2", evt)
	for id, c := range clients {
		want := 1
		if id == "conn-2" {
			want = 0
		}
		if got := len(drain(c)); got != want {
			t.Errorf("ToAllExcept delivered %d events to %s, want %d", got, id, want)
		}
	}

	g.ToConn("conn-3", evt)
	g.ToConn("conn-ghost", evt)
	for id, c := range clients {
		want := 0
		if id == "conn-3" {
			want = 1
		}
		if got := len(drain(c)); got != want {
			t.Errorf("ToConn delivered %d events to %s, want %d", got, id, want)
		}
	}
}

// TestGatewayEventEncoding verifies a delivery carries the envelope encoded
// once with the expected wire shape.
func TestGatewayEventEncoding(t *testing.T) {
	g := NewGateway()
	c := NewClient("conn-1", nil, g, nil)
	g.Add(c)

	g.ToConn("conn-1", Event{Type: TypeUserJoined, Payload: UserJoinedPayload{
		Username: "Alice",
		Avatar:   "https://example.test/a",
	}})

	queued := drain(c)
	if len(queued) != 1 {
		t.Fatalf("queued %d deliveries, want 1", len(queued))
	}

	var evt struct {
		Type    string `json:"type"`
		Payload struct {
			Username string `json:"username"`
			Avatar   string `json:"avatar"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(queued[0], &evt); err != nil {
		t.Fatalf("bad wire bytes %q: %v", queued[0], err)
	}
	if evt.Type != "user_joined" || evt.Payload.Username != "Alice" {
		t.Errorf("wire event = %+v", evt)
	}
}

// TestGatewayFullQueueDoesNotBlock verifies delivery to a client with a full
// send queue drops the event instead of blocking the fan-out.
func TestGatewayFullQueueDoesNotBlock(t *testing.T) {
	g := NewGateway()
	c := NewClient("conn-1", nil, g, nil)
	g.Add(c)

	for range sendQueueSize {
		c.send <- []byte("filler")
	}

	// With no reader this returns only if the event is dropped.
	g.ToAll(Event{Type: TypeUserLeft, Payload: UserLeftPayload{Username: "Alice"}})

	if got := len(drain(c)); got != sendQueueSize {
		t.Errorf("queue length = %d, want %d (event dropped)", got, sendQueueSize)
	}
}
