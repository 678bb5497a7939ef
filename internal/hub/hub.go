// Package hub fans live domain events out to connected subscribers and
// tracks how many of them are online.  It is the in-process half of the
// transport layer's publish channel; the subscriber count it reports is
// what the admin statistics show.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

// Envelope is the wire shape of every broadcast event.
type Envelope struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 16

// Hub is a broadcast fan-out over buffered channels.  Slow subscribers
// never block the booking path: an event that does not fit a
// subscriber's buffer is dropped for that subscriber only.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Envelope]struct{}
	nextID int
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{subs: make(map[chan Envelope]struct{})}
}

// Subscribe registers a new subscriber and returns its event channel
// together with an unsubscribe func.  The channel is closed on
// unsubscribe.
func (h *Hub) Subscribe() (<-chan Envelope, func()) {
	ch := make(chan Envelope, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Count reports the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast delivers an event envelope to every subscriber that can
// take it without blocking.
func (h *Hub) Broadcast(event string, payload interface{}) {
	env := Envelope{Event: event, Payload: payload, Timestamp: time.Now().UTC()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- env:
		default: // subscriber too far behind, drop
		}
	}
}

// BookingCreated broadcasts a booking_created event carrying the full
// booking.  Satisfies the engine's Notifier.
func (h *Hub) BookingCreated(b *model.Booking) {
	h.Broadcast("booking_created", b)
}

// Encode renders the envelope as JSON for transports that stream raw
// bytes.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
