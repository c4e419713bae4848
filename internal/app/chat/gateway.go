/*
Package chat contains the core logic of the presence and messaging hub.

This file defines the Gateway, the connection registry between the Router and
the transport layer. It tracks each live connection's outbound delivery
channel and implements the Sender fan-out targets (all, all-except-sender,
single connection).
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"pulsechat/internal/pkg/logx"
)

// Gateway owns the map from connection id to live client. It accepts and
// terminates transport-level connections and fans router-produced events out
// to their targets. Delivery is fire-and-forget per connection: a client with
// a full send queue just misses the event, and its own pump teardown handles
// the disconnect.
type Gateway struct {
	// mu protects concurrent access to the conns map.
	mu sync.RWMutex

	// conns maps connection id to its client.
	conns map[string]*Client

	// structured logger with Gateway context.
	logger zerolog.Logger
}

// NewGateway returns an empty Gateway.
func NewGateway() *Gateway {
	return &Gateway{
		conns:  make(map[string]*Client),
		logger: logx.Logger().With().Str("component", "Gateway").Logger(),
	}
}

// Add registers a client under its connection id. The client must be added
// before its connect event is routed so the handshake deliveries reach it.
func (g *Gateway) Add(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.conns[c.id] = c

	g.logger.Info().
		Str("conn_id", c.id).
		Int("total_conns", len(g.conns)).
		Msg("Connection registered.")
}

// Remove deregisters a connection id and closes the client's send channel.
// Removing an id twice, or one that was never added, is a no-op.
func (g *Gateway) Remove(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.conns[connID]
	if !ok {
		return
	}

	delete(g.conns, connID)
	close(c.send)

	g.logger.Info().
		Str("conn_id", connID).
		Int("total_conns", len(g.conns)).
		Msg("Connection removed.")
}

// Len returns the number of live connections.
func (g *Gateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.conns)
}

// Shutdown kicks every live connection. Used during graceful server shutdown.
func (g *Gateway) Shutdown() {
	g.mu.Lock()
	clients := make([]*Client, 0, len(g.conns))
	for _, c := range g.conns {
		clients = append(clients, c)
	}
	g.mu.Unlock()

	for _, c := range clients {
		c.CloseConn()
	}

	g.logger.Info().Int("closed", len(clients)).Msg("Gateway shutdown complete.")
}

// marshalEvent encodes an event once so a broadcast serializes a single time
// regardless of fan-out size.
func (g *Gateway) marshalEvent(evt Event) ([]byte, bool) {
	b, err := json.Marshal(evt)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("event_type", string(evt.Type)).
			Msg("Error marshaling event.")
		return nil, false
	}
	return b, true
}

// trySend queues bytes on a client without blocking. A full queue drops the
// event for that client only.
func (g *Gateway) trySend(c *Client, b []byte) {
	select {
	case c.send <- b:
	default:
		g.logger.Warn().
			Str("conn_id", c.id).
			Int("queue_len", len(c.send)).
			Msg("Client send queue full, dropping event.")
	}
}

// ToConn delivers an event to one specific connection. Unknown ids are
// ignored; the connection may have just disconnected.
func (g *Gateway) ToConn(connID string, evt Event) {
	b, ok := g.marshalEvent(evt)
	if !ok {
		return
	}

	// The read lock is held through the send so Remove cannot close the
	// channel in between.
	g.mu.RLock()
	defer g.mu.RUnlock()

	if c, live := g.conns[connID]; live {
		g.trySend(c, b)
	}
}

// ToAll delivers an event to every live connection.
func (g *Gateway) ToAll(evt Event) {
	g.fanOut("", evt)
}

// ToAllExcept delivers an event to every live connection except one.
func (g *Gateway) ToAllExcept(connID string, evt Event) {
	g.fanOut(connID, evt)
}

func (g *Gateway) fanOut(skipConnID string, evt Event) {
	b, ok := g.marshalEvent(evt)
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, c := range g.conns {
		if id == skipConnID {
			continue
		}
		g.trySend(c, b)
	}
}
