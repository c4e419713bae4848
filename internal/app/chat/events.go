/*
Package chat contains the core logic of the presence and messaging hub: the
connection registry, the shared message history, the per-connection send
throttle, and the router that fans events out to live connections.

This file defines the wire-level event envelope and every inbound and outbound
payload exchanged with clients.
*/
package chat

// EventType identifies the kind of an event envelope on the wire.
type EventType string

// Inbound event types, submitted by clients.
const (
	TypeSendMessage        EventType = "send_message"
	TypeUpdateUsername     EventType = "update_username"
	TypeUpdateAvatarGender EventType = "update_avatar_gender"
	TypeTyping             EventType = "typing"
	TypeSendPrivateMessage EventType = "send_private_message"
)

// Outbound event types, produced by the Router.
const (
	TypeSetUsername     EventType = "set_username"
	TypeMessageHistory  EventType = "message_history"
	TypeUserJoined      EventType = "user_joined"
	TypeUserLeft        EventType = "user_left"
	TypeOnlineUsers     EventType = "online_users_list"
	TypeNewMessage      EventType = "new_message"
	TypeUsernameUpdated EventType = "username_updated"
	TypeAvatarUpdated   EventType = "avatar_updated"
	TypeUserTyping      EventType = "user_typing"
	TypePrivateMessage  EventType = "private_message"
)

// Event is the envelope carried on the WebSocket in both directions.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// PublicMessage is a broadcast chat entry. It is immutable once created and
// lives in the history buffer until evicted by capacity overflow.
type PublicMessage struct {
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PrivateMessage is a point-to-point chat entry between two named connections.
// It exists only transiently during routing and is never stored.
type PrivateMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Avatar    string `json:"avatar"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Presence is one entry of the online-users listing.
type Presence struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Outbound payloads.
type (
	// SetUsernamePayload tells a new connection its assigned display name.
	SetUsernamePayload struct {
		Username string `json:"username"`
	}

	// MessageHistoryPayload replays the shared history to a new connection.
	MessageHistoryPayload struct {
		Messages []PublicMessage `json:"messages"`
	}

	// UserJoinedPayload announces a new participant to everyone.
	UserJoinedPayload struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}

	// UserLeftPayload announces a departed participant to everyone.
	UserLeftPayload struct {
		Username string `json:"username"`
	}

	// OnlineUsersPayload carries a fresh presence snapshot.
	OnlineUsersPayload struct {
		Users []Presence `json:"users"`
	}

	// UsernameUpdatedPayload announces a display-name change.
	UsernameUpdatedPayload struct {
		OldUsername string `json:"old_username"`
		NewUsername string `json:"new_username"`
		Avatar      string `json:"avatar"`
	}

	// AvatarUpdatedPayload announces an avatar change.
	AvatarUpdatedPayload struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}

	// UserTypingPayload relays a typing indicator to everyone except the sender.
	UserTypingPayload struct {
		Username string `json:"username"`
		IsTyping bool   `json:"isTyping"`
	}
)

// Inbound payloads.
type (
	// SendMessagePayload submits a public message.
	SendMessagePayload struct {
		Message string `json:"message"`
	}

	// UpdateUsernamePayload requests a display-name change.
	UpdateUsernamePayload struct {
		Username string `json:"username"`
	}

	// UpdateAvatarGenderPayload requests an avatar gender change.
	UpdateAvatarGenderPayload struct {
		Gender string `json:"gender"`
	}

	// TypingPayload signals that the sender started or stopped typing.
	TypingPayload struct {
		IsTyping bool `json:"isTyping"`
	}

	// SendPrivateMessagePayload submits a private message targeted by display name.
	SendPrivateMessagePayload struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
)
