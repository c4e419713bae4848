/*
Package chat contains the core logic of the presence and messaging hub.

This file defines the Client struct, representing an active WebSocket
connection. It manages the connection's lifecycle, the message communication
loops (ReadPump and WritePump), and dispatch of inbound events to the Router.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pulsechat/internal/app/user"
	"pulsechat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents an active WebSocket connection identified by its opaque,
// gateway-assigned connection id.
type Client struct {
	// id is the connection's routing key. It is never exposed to other users.
	id string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// gateway holding this connection's registry entry.
	gateway *Gateway

	// router receiving this connection's inbound events.
	router *Router

	// send queues outbound event bytes awaiting the write pump.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. The caller is
// expected to Add it to the gateway, start WritePump, route the connect
// event, and then block in ReadPump.
func NewClient(id string, conn *websocket.Conn, gateway *Gateway, router *Router) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		gateway: gateway,
		router:  router,
		send:    make(chan []byte, sendQueueSize),
		logger:  logx.Logger().With().Str("component", "Client").Str("conn_id", id).Logger(),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads inbound events from the WebSocket connection and dispatches
// them to the Router in submission order. It handles heartbeats (Pong) and
// performs disconnect cleanup when the connection closes for any reason.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.dispatch(messageBytes)
	}
}

// cleanupOnDisconnect tears the connection down exactly once: the registry
// entry goes first so no further deliveries target this connection, then the
// departure is routed, then the socket is closed.
func (c *Client) cleanupOnDisconnect() {
	c.gateway.Remove(c.id)
	c.router.OnDisconnect(c.id)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}
}

// dispatch parses one inbound envelope and hands it to the matching Router
// handler. Malformed envelopes and unknown types are dropped; the protocol
// has no error-acknowledgement channel.
func (c *Client) dispatch(messageBytes []byte) {
	var evt struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(messageBytes, &evt); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch evt.Type {
	case TypeSendMessage:
		var p SendMessagePayload
		if !c.bindPayload(evt.Payload, &p, evt.Type) {
			return
		}
		c.router.OnPublicMessage(c.id, p.Message)

	case TypeUpdateUsername:
		var p UpdateUsernamePayload
		if !c.bindPayload(evt.Payload, &p, evt.Type) {
			return
		}
		c.router.OnUpdateName(c.id, p.Username)

	case TypeUpdateAvatarGender:
		var p UpdateAvatarGenderPayload
		if !c.bindPayload(evt.Payload, &p, evt.Type) {
			return
		}
		c.router.OnUpdateGender(c.id, user.Gender(p.Gender))

	case TypeTyping:
		var p TypingPayload
		if !c.bindPayload(evt.Payload, &p, evt.Type) {
			return
		}
		c.router.OnTyping(c.id, p.IsTyping)

	case TypeSendPrivateMessage:
		var p SendPrivateMessagePayload
		if !c.bindPayload(evt.Payload, &p, evt.Type) {
			return
		}
		c.router.OnPrivateMessage(c.id, p.To, p.Message)

	default:
		c.logger.Warn().Str("event_type", string(evt.Type)).Msg("Client sent unsupported event type")
	}
}

// bindPayload unmarshals an inbound payload, logging and dropping on failure.
func (c *Client) bindPayload(raw json.RawMessage, dst any, t EventType) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn().Err(err).Str("event_type", string(t)).Msg("Client sent invalid payload")
		return false
	}
	return true
}

// WritePump writes queued events from the send channel to the WebSocket
// connection and keeps the heartbeat alive with periodic Pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// The gateway closed the send channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Info().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// CloseConn force-closes the underlying connection, which unblocks ReadPump
// and triggers the normal disconnect cleanup path.
func (c *Client) CloseConn() {
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Forced connection close error")
	}
}
