/*
Package chat contains the core logic of the presence and messaging hub.

This file defines the Router, the orchestrator of the hub. Each inbound event
is validated against the identity store and the send throttle, mutates the
shared state as needed, and fans out as (target, event) pairs through the
Sender. Transport fan-out itself is the gateway's concern.
*/
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pulsechat/internal/app/user"
	"pulsechat/internal/pkg/logx"
	"pulsechat/internal/pkg/randx"
)

// Sender delivers router-produced events to a target set of live connections.
// Delivery is best-effort per connection: a failure to reach one connection
// never aborts delivery to the others and is never reported back.
type Sender interface {
	// ToConn delivers to one specific connection.
	ToConn(connID string, evt Event)

	// ToAll delivers to every live connection.
	ToAll(evt Event)

	// ToAllExcept delivers to every live connection except one.
	ToAllExcept(connID string, evt Event)
}

// RouterConfig carries the explicit handles and injectable sources a Router
// is built from. Sender is required; nil state handles get fresh defaults and
// nil sources fall back to the real clock and random identity generation.
type RouterConfig struct {
	Sender     Sender
	Identities *IdentityStore
	History    *HistoryBuffer
	Throttle   *Throttle

	// Now supplies timestamps and throttle instants. Defaults to time.Now.
	Now func() time.Time

	// NewUsername and NewGender supply identity defaults for fresh
	// connections. Injectable so tests get deterministic values.
	NewUsername func() string
	NewGender   func() user.Gender
}

// Router routes inbound connection events to the correct set of live
// connections. A single mutex serializes every handler, so each compound
// read-modify-write over the shared state is atomic; per-connection event
// order is preserved by the gateway dispatching synchronously.
type Router struct {
	// mu serializes the handlers: a presence snapshot broadcast after a
	// join or rename must match the identity store at that instant.
	mu sync.Mutex

	identities *IdentityStore
	history    *HistoryBuffer
	throttle   *Throttle
	sender     Sender

	now         func() time.Time
	newUsername func() string
	newGender   func() user.Gender

	logger zerolog.Logger
}

// NewRouter constructs a Router from the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		identities:  cfg.Identities,
		history:     cfg.History,
		throttle:    cfg.Throttle,
		sender:      cfg.Sender,
		now:         cfg.Now,
		newUsername: cfg.NewUsername,
		newGender:   cfg.NewGender,
		logger:      logx.Logger().With().Str("component", "Router").Logger(),
	}

	if r.identities == nil {
		r.identities = NewIdentityStore()
	}
	if r.history == nil {
		r.history = NewHistoryBuffer(HistoryCapacity)
	}
	if r.throttle == nil {
		r.throttle = NewThrottle(MinMessageInterval)
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newUsername == nil {
		r.newUsername = randx.Username
	}
	if r.newGender == nil {
		r.newGender = user.RandomGender
	}

	return r
}

// Identities exposes the identity store, read-only use only.
func (r *Router) Identities() *IdentityStore {
	return r.identities
}

// timestamp formats the current instant as UTC RFC 3339.
func (r *Router) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// broadcastPresence sends a fresh presence snapshot to every connection.
func (r *Router) broadcastPresence() {
	r.sender.ToAll(Event{Type: TypeOnlineUsers, Payload: OnlineUsersPayload{Users: r.identities.Snapshot()}})
}

// OnConnect registers a fresh identity for the new connection, replays the
// shared history to it, and announces the join to everyone.
func (r *Router) OnConnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.newUsername()
	u := user.New(name, r.newGender())

	if err := r.identities.Create(connID, u); err != nil {
		// The gateway assigns one fresh id per connection, so a duplicate
		// means a broken invariant, not bad user input.
		r.logger.Error().
			Err(err).
			Str("conn_id", connID).
			Msg("Duplicate connection id on connect.")
		return
	}

	r.sender.ToConn(connID, Event{Type: TypeSetUsername, Payload: SetUsernamePayload{Username: name}})
	r.sender.ToConn(connID, Event{Type: TypeMessageHistory, Payload: MessageHistoryPayload{Messages: r.history.Snapshot()}})

	r.sender.ToAll(Event{Type: TypeUserJoined, Payload: UserJoinedPayload{Username: u.Name, Avatar: u.Avatar}})
	r.broadcastPresence()

	r.logger.Info().Str("conn_id", connID).Str("username", name).Msg("User connected.")
}

// OnDisconnect removes the connection's identity and, if it was known,
// announces the departure. Disconnects for unknown ids are ignored, which
// makes teardown safe against racing in-flight events.
func (r *Router) OnDisconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.throttle.Remove(connID)

	u, ok := r.identities.Remove(connID)
	if !ok {
		return
	}

	r.sender.ToAll(Event{Type: TypeUserLeft, Payload: UserLeftPayload{Username: u.Name}})
	r.broadcastPresence()

	r.logger.Info().Str("conn_id", connID).Str("username", u.Name).Msg("User disconnected.")
}

// OnPublicMessage appends a public message to the shared history and
// broadcasts it. Throttled or empty submissions are dropped silently; the
// protocol has no error-acknowledgement channel.
func (r *Router) OnPublicMessage(connID, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.identities.Get(connID)
	if !ok {
		return
	}

	now := r.now()
	if !r.throttle.Allow(connID, now) {
		return
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return
	}

	msg := PublicMessage{
		Username:  u.Name,
		Avatar:    u.Avatar,
		Message:   body,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	r.history.Append(msg)
	r.sender.ToAll(Event{Type: TypeNewMessage, Payload: msg})
}

// OnUpdateName applies a display-name change and announces it. No-op updates
// (empty or unchanged name, unknown connection) emit nothing.
func (r *Router) OnUpdateName(connID, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, u, changed := r.identities.UpdateName(connID, newName)
	if !changed {
		return
	}

	r.sender.ToAll(Event{Type: TypeUsernameUpdated, Payload: UsernameUpdatedPayload{
		OldUsername: old,
		NewUsername: u.Name,
		Avatar:      u.Avatar,
	}})
	r.broadcastPresence()

	r.logger.Info().Str("old_username", old).Str("new_username", u.Name).Msg("Username changed.")
}

// OnUpdateGender applies an avatar gender change and announces it. An invalid
// tag or unknown connection emits nothing.
func (r *Router) OnUpdateGender(connID string, gender user.Gender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.identities.UpdateGender(connID, gender)
	if !ok {
		return
	}

	r.sender.ToAll(Event{Type: TypeAvatarUpdated, Payload: AvatarUpdatedPayload{
		Username: u.Name,
		Avatar:   u.Avatar,
	}})
	r.broadcastPresence()
}

// OnTyping relays a typing indicator to everyone except the sender. Typing
// events are neither rate limited nor persisted.
func (r *Router) OnTyping(connID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.identities.Get(connID)
	if !ok {
		return
	}

	r.sender.ToAllExcept(connID, Event{Type: TypeUserTyping, Payload: UserTypingPayload{
		Username: u.Name,
		IsTyping: isTyping,
	}})
}

// OnPrivateMessage routes a private message by display name, earliest match
// first, and delivers it twice: once to the target and once back to the
// sender so their own UI reflects the sent message. Unresolvable targets and
// empty bodies are dropped silently.
func (r *Router) OnPrivateMessage(connID, targetName, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.identities.Get(connID)
	if !ok {
		return
	}

	body = strings.TrimSpace(body)
	if targetName == "" || body == "" {
		return
	}

	targetConn, ok := r.identities.FindByName(targetName)
	if !ok {
		return
	}

	msg := PrivateMessage{
		From:      u.Name,
		To:        targetName,
		Avatar:    u.Avatar,
		Message:   body,
		Timestamp: r.timestamp(),
	}

	evt := Event{Type: TypePrivateMessage, Payload: msg}
	r.sender.ToConn(targetConn, evt)
	r.sender.ToConn(connID, evt)
}
