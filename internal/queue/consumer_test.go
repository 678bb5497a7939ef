package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

type recordingStore struct {
	inserted []*model.Booking
	failWith error
}

func (s *recordingStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.inserted = append(s.inserted, b)
	return nil
}

func TestHandleMessage_InsertsBooking(t *testing.T) {
	store := &recordingStore{}
	msg := NewBookingMessage(&model.Booking{
		ID:        "b-1",
		ShowID:    "bus-1",
		Type:      model.ShowTypeBus,
		Units:     []string{"1", "2"},
		User:      model.User{Name: "Ada", Email: "ada@example.com"},
		Status:    model.BookingStatusConfirmed,
		CreatedAt: time.Now().UTC(),
	})
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if err := handleMessage(body, store); err != nil {
		t.Fatalf("handleMessage failed: %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
	got := store.inserted[0]
	if got.ID != "b-1" || got.User.Name != "Ada" || len(got.Units) != 2 {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestHandleMessage_MalformedIsDropped(t *testing.T) {
	store := &recordingStore{}

	for _, body := range [][]byte{
		[]byte("not json"),
		[]byte(`{"show_id":"bus-1"}`), // missing booking id
	} {
		err := handleMessage(body, store)
		if !errors.Is(err, errBadMessage) {
			t.Errorf("expected errBadMessage for %q, got %v", body, err)
		}
	}
	if len(store.inserted) != 0 {
		t.Errorf("malformed messages reached the store: %d inserts", len(store.inserted))
	}
}

func TestHandleMessage_InsertFailureIsRetryable(t *testing.T) {
	store := &recordingStore{failWith: errors.New("db down")}
	body, _ := json.Marshal(NewBookingMessage(&model.Booking{ID: "b-1", ShowID: "bus-1"}))

	err := handleMessage(body, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, errBadMessage) {
		t.Error("insert failures must not be classified as bad messages, they are requeued")
	}
}
