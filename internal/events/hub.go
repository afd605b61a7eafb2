// Package events fans print-job previews out to connected operator consoles.
package events

import (
	"sync"
	"time"
)

// Preview is one rendered receipt as shown on the operator console.
type Preview struct {
	JobID    string    `json:"job_id"`
	Provider string    `json:"provider"`
	TicketID string    `json:"ticket_id"`
	Status   string    `json:"status"` // "printed" or "failed"
	Text     string    `json:"text"`   // boxed ASCII rendition
	At       time.Time `json:"at"`
}

// Hub is an in-memory pub/sub with a small ring buffer so late clients see
// the most recent receipts on connect.
type Hub struct {
	mu    sync.Mutex
	ring  []Preview
	start int
	size  int

	subs      map[int]chan Preview
	nextSubID int
}

func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 32
	}
	return &Hub{
		ring: make([]Preview, capacity),
		subs: make(map[int]chan Preview),
	}
}

// Publish stores p in the ring and delivers it to all subscribers. Slow
// clients lose events rather than blocking the print path.
func (h *Hub) Publish(p Preview) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pushLocked(p)
	for _, ch := range h.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribe returns a channel of future previews and a cancel function.
func (h *Hub) Subscribe() (<-chan Preview, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Preview, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Recent returns the buffered previews, oldest first.
func (h *Hub) Recent() []Preview {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Preview, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

func (h *Hub) pushLocked(p Preview) {
	if h.size < len(h.ring) {
		h.ring[(h.start+h.size)%len(h.ring)] = p
		h.size++
		return
	}
	h.ring[h.start] = p
	h.start = (h.start + 1) % len(h.ring)
}
