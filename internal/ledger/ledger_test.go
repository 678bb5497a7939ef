package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

func newTestLedger(t *testing.T, states ...ShowState) *Ledger {
	t.Helper()
	l := New(states)
	t.Cleanup(l.Close)
	return l
}

func busShow(id string, seats int) *model.Show {
	return &model.Show{
		ID:        id,
		Type:      model.ShowTypeBus,
		Title:     "test bus",
		StartTime: time.Now().UTC(),
		Units:     model.UnitsFor(model.ShowTypeBus, seats),
	}
}

func doctorShow(id string) *model.Show {
	return &model.Show{
		ID:        id,
		Type:      model.ShowTypeDoctor,
		Title:     "test clinic",
		StartTime: time.Now().UTC(),
		Units:     model.UnitsFor(model.ShowTypeDoctor, 0),
	}
}

func TestClaim_Success(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 10)})

	id, err := l.Claim(context.Background(), "bus-1", []string{"1", "2", "3"})
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if id == "" {
		t.Fatal("claim returned empty booking id")
	}

	held, err := l.Snapshot(context.Background(), "bus-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	for _, u := range []string{"1", "2", "3"} {
		if !held[u] {
			t.Errorf("unit %s should be held", u)
		}
	}
	if held["4"] {
		t.Error("unit 4 should be free")
	}
}

func TestClaim_ConflictIsAllOrNothing(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 10)})

	if _, err := l.Claim(context.Background(), "bus-1", []string{"1", "2", "3"}); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := l.Claim(context.Background(), "bus-1", []string{"3", "4"})
	var conflict *Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *Conflict, got %v", err)
	}
	if len(conflict.AlreadyHeld) != 1 || conflict.AlreadyHeld[0] != "3" {
		t.Errorf("expected conflict on [3], got %v", conflict.AlreadyHeld)
	}

	// The losing claim must not partially commit: seat 4 stays free.
	held, err := l.Snapshot(context.Background(), "bus-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if held["4"] {
		t.Error("seat 4 was committed by a rejected claim")
	}
}

func TestClaim_UnknownShowAndUnit(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 4)})

	if _, err := l.Claim(context.Background(), "nope", []string{"1"}); !errors.Is(err, ErrUnknownShow) {
		t.Errorf("expected ErrUnknownShow, got %v", err)
	}
	if _, err := l.Claim(context.Background(), "bus-1", []string{"99"}); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
	if !l.UnitExists("bus-1", "4") {
		t.Error("unit 4 should exist")
	}
	if l.UnitExists("bus-1", "5") {
		t.Error("unit 5 should not exist")
	}
}

func TestClaim_MutualExclusion(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: doctorShow("doc-1")})

	const racers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners []string
	losses := 0

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := l.Claim(context.Background(), "doc-1", []string{"09:00"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, id)
				return
			}
			var conflict *Conflict
			if !errors.As(err, &conflict) {
				t.Errorf("loser got unexpected error: %v", err)
				return
			}
			losses++
		}()
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", len(winners))
	}
	if losses != racers-1 {
		t.Errorf("expected %d conflicts, got %d", racers-1, losses)
	}
}

func TestClaim_NoLostUpdates(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 40)})

	// 20 goroutines each claim a disjoint pair of seats.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			units := []string{fmt.Sprintf("%d", i*2+1), fmt.Sprintf("%d", i*2+2)}
			if _, err := l.Claim(context.Background(), "bus-1", units); err != nil {
				t.Errorf("disjoint claim %v failed: %v", units, err)
			}
		}(i)
	}
	wg.Wait()

	held, err := l.Snapshot(context.Background(), "bus-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	for label, h := range held {
		if !h {
			t.Errorf("seat %s should be held after all claims", label)
		}
	}
}

func TestClaim_CrossShowIndependence(t *testing.T) {
	l := newTestLedger(t,
		ShowState{Show: busShow("bus-a", 40)},
		ShowState{Show: busShow("bus-b", 40)},
	)

	// Hammer both shows concurrently; every seat gets exactly one owner
	// on each show and neither show's traffic starves the other.
	var wg sync.WaitGroup
	for _, showID := range []string{"bus-a", "bus-b"} {
		for seat := 1; seat <= 40; seat++ {
			wg.Add(1)
			go func(showID, unit string) {
				defer wg.Done()
				if _, err := l.Claim(context.Background(), showID, []string{unit}); err != nil {
					t.Errorf("claim %s/%s failed: %v", showID, unit, err)
				}
			}(showID, fmt.Sprintf("%d", seat))
		}
	}
	wg.Wait()

	for _, showID := range []string{"bus-a", "bus-b"} {
		held, err := l.Snapshot(context.Background(), showID)
		if err != nil {
			t.Fatalf("snapshot %s failed: %v", showID, err)
		}
		booked := 0
		for _, h := range held {
			if h {
				booked++
			}
		}
		if booked != 40 {
			t.Errorf("%s: expected 40 held seats, got %d", showID, booked)
		}
	}
}

func TestRelease_FreesUnits(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 4)})

	if _, err := l.Claim(context.Background(), "bus-1", []string{"1", "2"}); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := l.Release(context.Background(), "bus-1", []string{"1", "2"}); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := l.Claim(context.Background(), "bus-1", []string{"1", "2"}); err != nil {
		t.Errorf("claim after release failed: %v", err)
	}
}

func TestNew_RestoresHeldState(t *testing.T) {
	l := newTestLedger(t, ShowState{
		Show: doctorShow("doc-1"),
		Held: map[string]string{"09:00": "persisted-booking"},
	})

	_, err := l.Claim(context.Background(), "doc-1", []string{"09:00"})
	var conflict *Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict on restored hold, got %v", err)
	}
}

func TestClaim_AbandonedCallerDoesNotWedgeShow(t *testing.T) {
	l := newTestLedger(t, ShowState{Show: busShow("bus-1", 4)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Claim(ctx, "bus-1", []string{"1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The show goroutine must still serve later callers.
	if _, err := l.Claim(context.Background(), "bus-1", []string{"2"}); err != nil {
		t.Errorf("claim after abandoned caller failed: %v", err)
	}
}

func TestClose_RejectsNewRequests(t *testing.T) {
	l := New([]ShowState{{Show: busShow("bus-1", 4)}})
	l.Close()

	// Closing races with the drain loop; either way the caller gets
	// ErrClosed rather than hanging.
	_, err := l.Claim(context.Background(), "bus-1", []string{"1"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
