package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pulsechat/internal/app/chat"
	"pulsechat/internal/configs"
	"pulsechat/internal/handler"
)

const readTimeout = 2 * time.Second

// wireEvent mirrors the envelope as seen on the wire.
type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// newTestServer wires a fresh chat core behind an httptest server.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "development",
		Port:           8080,
		AllowedOrigins: []string{},
	}

	gateway := chat.NewGateway()
	router := chat.NewRouter(chat.RouterConfig{Sender: gateway})

	srv := httptest.NewServer(handler.Router(&handler.AppDeps{
		Config:  cfg,
		Gateway: gateway,
		Router:  router,
	}))
	t.Cleanup(srv.Close)

	return srv
}

// dial opens a WebSocket connection to the test server.
func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s failed: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readEvent reads one envelope, failing the test on timeout.
func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var evt wireEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("invalid envelope %q: %v", data, err)
	}
	return evt
}

// readHandshake consumes the four-event connect sequence and returns the
// assigned username.
func readHandshake(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	evt := readEvent(t, conn)
	if evt.Type != "set_username" {
		t.Fatalf("first event = %q, want set_username", evt.Type)
	}
	var setUsername struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(evt.Payload, &setUsername); err != nil {
		t.Fatalf("bad set_username payload: %v", err)
	}

	for _, want := range []string{"message_history", "user_joined", "online_users_list"} {
		if evt = readEvent(t, conn); evt.Type != want {
			t.Fatalf("handshake event = %q, want %q", evt.Type, want)
		}
	}

	return setUsername.Username
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()

	if err := conn.WriteJSON(map[string]any{"type": eventType, "payload": payload}); err != nil {
		t.Fatalf("WriteJSON %s failed: %v", eventType, err)
	}
}

// TestWebSocketConnectHandshake verifies a new connection receives its
// assigned identity, an empty history, its own join announcement, and a
// presence snapshot of one.
func TestWebSocketConnectHandshake(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	evt := readEvent(t, conn)
	if evt.Type != "set_username" {
		t.Fatalf("first event = %q, want set_username", evt.Type)
	}
	var setUsername struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(evt.Payload, &setUsername); err != nil {
		t.Fatalf("bad set_username payload: %v", err)
	}
	if !regexp.MustCompile(`^User_\d{4}$`).MatchString(setUsername.Username) {
		t.Errorf("assigned username %q does not match User_NNNN", setUsername.Username)
	}

	evt = readEvent(t, conn)
	if evt.Type != "message_history" {
		t.Fatalf("second event = %q, want message_history", evt.Type)
	}
	var history struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(evt.Payload, &history); err != nil {
		t.Fatalf("bad message_history payload: %v", err)
	}
	if history.Messages == nil || len(history.Messages) != 0 {
		t.Errorf("history = %s, want an empty list", evt.Payload)
	}

	if evt = readEvent(t, conn); evt.Type != "user_joined" {
		t.Fatalf("third event = %q, want user_joined", evt.Type)
	}

	evt = readEvent(t, conn)
	if evt.Type != "online_users_list" {
		t.Fatalf("fourth event = %q, want online_users_list", evt.Type)
	}
	var presence struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	if err := json.Unmarshal(evt.Payload, &presence); err != nil {
		t.Fatalf("bad online_users_list payload: %v", err)
	}
	if len(presence.Users) != 1 || presence.Users[0].Username != setUsername.Username {
		t.Errorf("presence = %s, want just %q", evt.Payload, setUsername.Username)
	}
}

// TestWebSocketSecondJoinVisibleToBoth verifies that when a second client
// connects, both clients observe the join and a presence snapshot of two.
func TestWebSocketSecondJoinVisibleToBoth(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv)
	readHandshake(t, conn1)

	conn2 := dial(t, srv)
	name2 := readHandshake(t, conn2)

	evt := readEvent(t, conn1)
	if evt.Type != "user_joined" {
		t.Fatalf("conn1 saw %q, want user_joined", evt.Type)
	}
	var joined struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(evt.Payload, &joined); err != nil {
		t.Fatalf("bad user_joined payload: %v", err)
	}
	if joined.Username != name2 {
		t.Errorf("user_joined.username = %q, want %q", joined.Username, name2)
	}

	evt = readEvent(t, conn1)
	if evt.Type != "online_users_list" {
		t.Fatalf("conn1 saw %q, want online_users_list", evt.Type)
	}
	var presence struct {
		Users []json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(evt.Payload, &presence); err != nil {
		t.Fatalf("bad online_users_list payload: %v", err)
	}
	if len(presence.Users) != 2 {
		t.Errorf("presence length = %d, want 2", len(presence.Users))
	}
}

// TestWebSocketPublicMessage verifies an accepted public message is
// broadcast to every connection, sender included.
func TestWebSocketPublicMessage(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv)
	name1 := readHandshake(t, conn1)

	conn2 := dial(t, srv)
	readHandshake(t, conn2)
	readEvent(t, conn1) // user_joined for conn2
	readEvent(t, conn1) // online_users_list

	sendEvent(t, conn1, "send_message", map[string]any{"message": "  hello  "})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		evt := readEvent(t, conn)
		if evt.Type != "new_message" {
			t.Fatalf("got %q, want new_message", evt.Type)
		}
		var msg struct {
			Username  string `json:"username"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
		}
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			t.Fatalf("bad new_message payload: %v", err)
		}
		if msg.Username != name1 || msg.Message != "hello" {
			t.Errorf("new_message = %+v, want trimmed message from %q", msg, name1)
		}
		if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
			t.Errorf("timestamp %q is not RFC 3339: %v", msg.Timestamp, err)
		}
	}
}

// TestWebSocketPrivateMessage verifies name-targeted delivery reaches the
// target and echoes back to the sender.
func TestWebSocketPrivateMessage(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv)
	readHandshake(t, conn1)

	conn2 := dial(t, srv)
	readHandshake(t, conn2)
	readEvent(t, conn1) // user_joined for conn2
	readEvent(t, conn1) // online_users_list

	// Fixed names keep the name-based target resolution unambiguous.
	const name1, name2 = "alice", "bob"
	sendEvent(t, conn1, "update_username", map[string]any{"username": name1})
	sendEvent(t, conn2, "update_username", map[string]any{"username": name2})
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		for range 4 { // two renames, each username_updated + online_users_list
			readEvent(t, conn)
		}
	}

	sendEvent(t, conn1, "send_private_message", map[string]any{"to": name2, "message": "psst"})

	for _, conn := range []*websocket.Conn{conn2, conn1} {
		evt := readEvent(t, conn)
		if evt.Type != "private_message" {
			t.Fatalf("got %q, want private_message", evt.Type)
		}
		var msg struct {
			From    string `json:"from"`
			To      string `json:"to"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			t.Fatalf("bad private_message payload: %v", err)
		}
		if msg.From != name1 || msg.To != name2 || msg.Message != "psst" {
			t.Errorf("private_message = %+v", msg)
		}
	}
}

// TestWebSocketTypingExcludesSender verifies only the other client sees the
// typing indicator.
func TestWebSocketTypingExcludesSender(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv)
	name1 := readHandshake(t, conn1)

	conn2 := dial(t, srv)
	readHandshake(t, conn2)
	readEvent(t, conn1) // user_joined for conn2
	readEvent(t, conn1) // online_users_list

	sendEvent(t, conn1, "typing", map[string]any{"isTyping": true})

	evt := readEvent(t, conn2)
	if evt.Type != "user_typing" {
		t.Fatalf("conn2 saw %q, want user_typing", evt.Type)
	}
	var typing struct {
		Username string `json:"username"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(evt.Payload, &typing); err != nil {
		t.Fatalf("bad user_typing payload: %v", err)
	}
	if typing.Username != name1 || !typing.IsTyping {
		t.Errorf("user_typing = %+v", typing)
	}
}

// TestWebSocketDisconnectAnnounced verifies the remaining client sees the
// departure and a shrunken presence snapshot.
func TestWebSocketDisconnectAnnounced(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv)
	readHandshake(t, conn1)

	conn2 := dial(t, srv)
	name2 := readHandshake(t, conn2)
	readEvent(t, conn1) // user_joined for conn2
	readEvent(t, conn1) // online_users_list

	conn2.Close()

	evt := readEvent(t, conn1)
	if evt.Type != "user_left" {
		t.Fatalf("conn1 saw %q, want user_left", evt.Type)
	}
	var left struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(evt.Payload, &left); err != nil {
		t.Fatalf("bad user_left payload: %v", err)
	}
	if left.Username != name2 {
		t.Errorf("user_left.username = %q, want %q", left.Username, name2)
	}

	evt = readEvent(t, conn1)
	if evt.Type != "online_users_list" {
		t.Fatalf("conn1 saw %q, want online_users_list", evt.Type)
	}
}

// TestHealthEndpoint verifies the health route responds with the standard
// JSON envelope.
func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var body struct {
		Code int `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if body.Code != 0 || body.Data.Status != "ok" {
		t.Errorf("health body = %+v", body)
	}
}

// TestIndexPage verifies the chat page is served at the root.
func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}
