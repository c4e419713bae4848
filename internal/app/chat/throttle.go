package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MinMessageInterval is the minimum wall-clock time between two accepted
// public sends from the same connection.
const MinMessageInterval = 250 * time.Millisecond

// Throttle smooths public-message submission per connection. Each connection
// gets a token bucket with burst 1 refilled once per MinMessageInterval,
// which is exactly a fixed-minimum-interval throttle: the first send after
// connect is always allowed, and no burst allowance accumulates.
//
// Entries are created lazily on the first send attempt and are keyed by
// connection id, so a renamed connection keeps its throttle state.
type Throttle struct {
	mu       sync.Mutex
	limits   map[string]*rate.Limiter
	interval time.Duration
}

// NewThrottle returns a Throttle enforcing the given minimum interval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = MinMessageInterval
	}
	return &Throttle{
		limits:   make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Allow reports whether a send at the given instant is accepted for the
// connection, consuming the slot if so. Denied attempts do not reset the
// interval.
func (t *Throttle) Allow(connID string, now time.Time) bool {
	t.mu.Lock()
	limiter, ok := t.limits[connID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limits[connID] = limiter
	}
	t.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Remove drops the throttle state for a disconnected connection. Stale
// entries are harmless but bounded only by connection churn, so the router
// cleans up on disconnect.
func (t *Throttle) Remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.limits, connID)
}
