package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Dispatch describes one finished interaction dispatch. It carries no body,
// signature, or key material.
type Dispatch struct {
	ID         int64     `json:"id"`
	DispatchID string    `json:"dispatch_id"`
	At         time.Time `json:"at"`
	Outcome    string    `json:"outcome"`
	Status     int       `json:"status"`
	Kind       string    `json:"kind,omitempty"`
	Command    string    `json:"command,omitempty"`
	BodyDigest string    `json:"body_digest,omitempty"`
	DurationUS int64     `json:"duration_us"`
}

// Hub keeps the most recent dispatches in a ring buffer.
type Hub struct {
	nextID atomic.Int64

	mu    sync.Mutex
	ring  []Dispatch
	start int
	size  int
}

func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{ring: make([]Dispatch, capacity)}
}

// Publish stamps d with the next sequence ID and stores it, evicting the
// oldest entry when full.
func (h *Hub) Publish(d Dispatch) {
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}

	h.mu.Lock()
	d.ID = h.nextID.Add(1)
	h.pushLocked(d)
	h.mu.Unlock()
}

// Since returns buffered dispatches with ID > lastID, oldest-first.
// If lastID is 0, the full ring buffer snapshot is returned.
func (h *Hub) Since(lastID int64) []Dispatch {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Dispatch, 0, h.size)
	for i := 0; i < h.size; i++ {
		d := h.ring[(h.start+i)%len(h.ring)]
		if lastID == 0 || d.ID > lastID {
			out = append(out, d)
		}
	}
	return out
}

// LastID returns the ID of the most recently published dispatch.
func (h *Hub) LastID() int64 {
	return h.nextID.Load()
}

func (h *Hub) pushLocked(d Dispatch) {
	capacity := len(h.ring)
	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = d
		h.size++
		return
	}

	// Overwrite oldest.
	h.ring[h.start] = d
	h.start = (h.start + 1) % capacity
}
