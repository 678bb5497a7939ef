package hub

import (
	"testing"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

func TestSubscribeAndCount(t *testing.T) {
	h := New()
	if h.Count() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", h.Count())
	}

	_, cancelA := h.Subscribe()
	_, cancelB := h.Subscribe()
	if h.Count() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", h.Count())
	}

	cancelA()
	if h.Count() != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", h.Count())
	}
	cancelA() // second cancel is a no-op
	if h.Count() != 1 {
		t.Fatalf("double cancel changed the count: %d", h.Count())
	}
	cancelB()
	if h.Count() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", h.Count())
	}
}

func TestBroadcastDelivers(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	defer cancel()

	booking := &model.Booking{ID: "b-1", ShowID: "doc-1", Type: model.ShowTypeDoctor, Units: []string{"09:00"}}
	h.BookingCreated(booking)

	select {
	case env := <-ch:
		if env.Event != "booking_created" {
			t.Errorf("expected booking_created, got %q", env.Event)
		}
		got, ok := env.Payload.(*model.Booking)
		if !ok || got.ID != "b-1" {
			t.Errorf("unexpected payload: %#v", env.Payload)
		}
		if env.Timestamp.IsZero() {
			t.Error("envelope has no timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBroadcastDropsForSlowSubscriber(t *testing.T) {
	h := New()
	slow, cancelSlow := h.Subscribe()
	defer cancelSlow()
	fast, cancelFast := h.Subscribe()
	defer cancelFast()

	// Overflow the slow subscriber's buffer while never reading from it.
	for i := 0; i < subscriberBuffer*2; i++ {
		h.Broadcast("booking_created", i)
	}

	// The fast subscriber still got a full buffer; the hub never blocked.
	if len(fast) != subscriberBuffer {
		t.Errorf("fast subscriber has %d buffered events, want %d", len(fast), subscriberBuffer)
	}
	if len(slow) != subscriberBuffer {
		t.Errorf("slow subscriber has %d buffered events, want %d", len(slow), subscriberBuffer)
	}
}

func TestEnvelopeEncode(t *testing.T) {
	env := Envelope{Event: "booking_created", Payload: map[string]string{"id": "b-1"}, Timestamp: time.Now().UTC()}
	data, err := env.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("encode produced no bytes")
	}
}
