package chat

import "sync"

// HistoryCapacity is the fixed number of public messages retained for replay
// to new connections.
const HistoryCapacity = 150

// HistoryBuffer is a bounded, insertion-ordered buffer of recent public
// messages, shared by all connections. When full, appending evicts the oldest
// entry. It is a plain circular buffer; appends are O(1).
type HistoryBuffer struct {
	mu    sync.RWMutex
	buf   []PublicMessage
	head  int
	count int
}

// NewHistoryBuffer returns an empty buffer holding at most capacity messages.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &HistoryBuffer{
		buf: make([]PublicMessage, capacity),
	}
}

// Append adds a message at the tail, evicting the head first if the buffer
// is at capacity.
func (h *HistoryBuffer) Append(m PublicMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == len(h.buf) {
		h.buf[h.head] = m
		h.head = (h.head + 1) % len(h.buf)
		return
	}

	h.buf[(h.head+h.count)%len(h.buf)] = m
	h.count++
}

// Snapshot returns an independent copy of the buffered messages, oldest
// first. The result is never nil so it encodes as a JSON array.
func (h *HistoryBuffer) Snapshot() []PublicMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]PublicMessage, 0, h.count)
	for i := range h.count {
		out = append(out, h.buf[(h.head+i)%len(h.buf)])
	}
	return out
}

// Len returns the number of buffered messages.
func (h *HistoryBuffer) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.count
}
