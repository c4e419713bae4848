package chat_test

import (
	"testing"
	"time"

	"pulsechat/internal/app/chat"
)

var throttleBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestThrottleFirstSendAllowed verifies that the first send after connect is
// always accepted.
func TestThrottleFirstSendAllowed(t *testing.T) {
	th := chat.NewThrottle(chat.MinMessageInterval)

	if !th.Allow("conn-1", throttleBase) {
		t.Error("first send was throttled")
	}
}

// TestThrottleMinimumInterval verifies the fixed minimum interval between
// accepted sends: under 250ms is denied, at or above is accepted.
func TestThrottleMinimumInterval(t *testing.T) {
	th := chat.NewThrottle(chat.MinMessageInterval)

	if !th.Allow("conn-1", throttleBase) {
		t.Fatal("first send was throttled")
	}
	if th.Allow("conn-1", throttleBase.Add(100*time.Millisecond)) {
		t.Error("send 100ms after the last accepted one was allowed")
	}
	if th.Allow("conn-1", throttleBase.Add(249*time.Millisecond)) {
		t.Error("send 249ms after the last accepted one was allowed")
	}
	if !th.Allow("conn-1", throttleBase.Add(250*time.Millisecond)) {
		t.Error("send 250ms after the last accepted one was denied")
	}
}

// TestThrottleDeniedSendDoesNotReset verifies that a denied attempt does not
// push the next allowed instant further out.
func TestThrottleDeniedSendDoesNotReset(t *testing.T) {
	th := chat.NewThrottle(chat.MinMessageInterval)

	th.Allow("conn-1", throttleBase)
	th.Allow("conn-1", throttleBase.Add(200*time.Millisecond)) // denied

	if !th.Allow("conn-1", throttleBase.Add(260*time.Millisecond)) {
		t.Error("denied attempt reset the interval")
	}
}

// TestThrottlePerConnection verifies connections are throttled independently.
func TestThrottlePerConnection(t *testing.T) {
	th := chat.NewThrottle(chat.MinMessageInterval)

	if !th.Allow("conn-1", throttleBase) {
		t.Fatal("first send of conn-1 was throttled")
	}
	if !th.Allow("conn-2", throttleBase.Add(time.Millisecond)) {
		t.Error("conn-2 was throttled by conn-1's send")
	}
}

// TestThrottleRemove verifies that cleanup resets the state: a reconnecting
// id starts with a fresh allowance.
func TestThrottleRemove(t *testing.T) {
	th := chat.NewThrottle(chat.MinMessageInterval)

	th.Allow("conn-1", throttleBase)
	th.Remove("conn-1")

	if !th.Allow("conn-1", throttleBase.Add(time.Millisecond)) {
		t.Error("send after Remove was throttled")
	}
}
