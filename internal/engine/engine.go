package engine

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/adilyam/show-reservation/internal/ledger"
	"github.com/adilyam/show-reservation/internal/model"
)

// BookingStore is the write-through side of the catalog store.  The
// engine persists every confirmed booking; failures are reconciled out
// of band and never roll back the in-memory claim.
type BookingStore interface {
	InsertBooking(ctx context.Context, b *model.Booking) error
}

// Notifier receives the booking_created announcement for every confirmed
// booking.  Implementations (live subscriber hub, message broker) must
// not block the booking path.
type Notifier interface {
	BookingCreated(b *model.Booking)
}

// Reconciler accepts bookings whose write-through persist failed so they
// can be durably retried outside the request path.
type Reconciler interface {
	EnqueueBooking(ctx context.Context, b *model.Booking) error
}

// Notifiers fans one announcement out to several sinks (live hub,
// message broker) in order.
type Notifiers []Notifier

func (ns Notifiers) BookingCreated(b *model.Booking) {
	for _, n := range ns {
		n.BookingCreated(b)
	}
}

// BookRequest is a validated-shape booking intent as received from the
// transport layer.  Units carries the resolved selector: exactly one
// slot label for doctor shows, one or more seat labels otherwise.
type BookRequest struct {
	ShowID string
	Type   model.ShowType
	Units  []string
	User   model.User
}

// Engine validates booking requests against the ledger, mints booking
// records and fans out domain events.  The show catalog is fixed at
// construction; booking records are the only mutable state and are
// guarded by mu.
type Engine struct {
	ledger      *ledger.Ledger
	shows       map[string]*model.Show
	showOrder   []string // show ids sorted by start time, for stable listings
	store       BookingStore
	notifier    Notifier
	reconciler  Reconciler
	subscribers func() int

	mu       sync.RWMutex
	bookings map[string]*model.Booking
	recent   []*model.Booking // insertion order, oldest first
}

// Option tweaks optional engine collaborators.
type Option func(*Engine)

// WithReconciler wires the queue that retries failed booking persists.
func WithReconciler(r Reconciler) Option {
	return func(e *Engine) { e.reconciler = r }
}

// WithSubscriberCounter injects the transport layer's live subscriber
// count into statistics; the engine never computes it itself.
func WithSubscriberCounter(fn func() int) Option {
	return func(e *Engine) { e.subscribers = fn }
}

// WithBookings preloads previously persisted bookings so listings and
// per-type counts survive a restart.  bookings arrive newest first, the
// way the catalog store lists them; recent keeps oldest first, so the
// slice is walked backwards.
func WithBookings(bookings []*model.Booking) Option {
	return func(e *Engine) {
		for i := len(bookings) - 1; i >= 0; i-- {
			b := bookings[i]
			e.bookings[b.ID] = b
			e.recent = append(e.recent, b)
		}
	}
}

// New constructs the engine over an already-seeded ledger.  shows must
// be the same catalog records the ledger was built from.
func New(led *ledger.Ledger, shows []*model.Show, store BookingStore, notifier Notifier, opts ...Option) *Engine {
	if led == nil || store == nil || notifier == nil {
		panic("nil dependency passed to engine.New")
	}
	e := &Engine{
		ledger:      led,
		shows:       make(map[string]*model.Show, len(shows)),
		store:       store,
		notifier:    notifier,
		subscribers: func() int { return 0 },
		bookings:    make(map[string]*model.Booking),
	}
	for _, s := range shows {
		e.shows[s.ID] = s
		e.showOrder = append(e.showOrder, s.ID)
	}
	sort.Slice(e.showOrder, func(i, j int) bool {
		a, b := e.shows[e.showOrder[i]], e.shows[e.showOrder[j]]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Book turns a booking intent into a confirmed booking.  Validation and
// label resolution happen entirely outside the ledger's critical
// section; only the final availability check and the free->held
// transition run inside it.  On a persistence failure after a granted
// claim, Book returns the confirmed booking together with a
// *PersistenceFailureError: the claim stands, the event has been
// emitted, and the durable write is retried out of band.
func (e *Engine) Book(ctx context.Context, req BookRequest) (*model.Booking, error) {
	show, ok := e.shows[req.ShowID]
	if !ok {
		return nil, ErrShowNotFound
	}
	if !req.Type.Valid() {
		return nil, &InvalidRequestError{Reason: "unknown show type " + string(req.Type)}
	}
	if req.Type != show.Type {
		return nil, &InvalidRequestError{Reason: "type does not match show"}
	}
	if req.User.Name == "" {
		return nil, &InvalidRequestError{Reason: "user is required"}
	}

	units := dedup(req.Units)
	if len(units) == 0 {
		if show.Type.UsesSlots() {
			return nil, &InvalidRequestError{Reason: "a slot is required"}
		}
		return nil, &InvalidRequestError{Reason: "no seats selected"}
	}
	if show.Type.UsesSlots() && len(units) != 1 {
		return nil, &InvalidRequestError{Reason: "doctor bookings take exactly one slot"}
	}

	var unknown []string
	for _, label := range units {
		if !e.ledger.UnitExists(show.ID, label) {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownUnitError{Units: unknown}
	}

	bookingID, err := e.ledger.Claim(ctx, show.ID, units)
	if err != nil {
		var conflict *ledger.Conflict
		if errors.As(err, &conflict) {
			return nil, &AlreadyBookedError{Units: conflict.AlreadyHeld}
		}
		return nil, err
	}

	booking := &model.Booking{
		ID:        bookingID,
		ShowID:    show.ID,
		Type:      show.Type,
		Units:     units,
		User:      req.User,
		Status:    model.BookingStatusConfirmed,
		CreatedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.bookings[booking.ID] = booking
	e.recent = append(e.recent, booking)
	e.mu.Unlock()

	persistErr := e.store.InsertBooking(ctx, booking)
	if persistErr != nil {
		log.Printf("engine: booking %s persist failed: %v", booking.ID, persistErr)
		if e.reconciler != nil {
			if qerr := e.reconciler.EnqueueBooking(ctx, booking); qerr != nil {
				log.Printf("engine: booking %s reconcile enqueue failed: %v", booking.ID, qerr)
			}
		}
	}

	// Observers follow in-memory truth, so the event goes out even when
	// the durable write failed.
	e.notifier.BookingCreated(booking)

	if persistErr != nil {
		return booking, &PersistenceFailureError{BookingID: booking.ID, Err: persistErr}
	}
	return booking, nil
}

// ShowAvailability is one entry of the public availability listing.
type ShowAvailability struct {
	ID        string            `json:"id"`
	Type      model.ShowType    `json:"type"`
	Title     string            `json:"title"`
	StartTime time.Time         `json:"start_time"`
	Units     map[string]string `json:"units"` // unit label -> "held" | "free"
}

// ListAvailability returns every show with the held/free state of each
// of its units, ordered by start time.  Each show's unit map is a
// point-in-time ledger snapshot; across shows the listing is only as
// consistent as reading them one at a time allows, which is fine for a
// browse view.
func (e *Engine) ListAvailability(ctx context.Context) ([]ShowAvailability, error) {
	out := make([]ShowAvailability, 0, len(e.showOrder))
	for _, id := range e.showOrder {
		show := e.shows[id]
		held, err := e.ledger.Snapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		units := make(map[string]string, len(held))
		for label, h := range held {
			if h {
				units[label] = "held"
			} else {
				units[label] = "free"
			}
		}
		out = append(out, ShowAvailability{
			ID:        show.ID,
			Type:      show.Type,
			Title:     show.Title,
			StartTime: show.StartTime,
			Units:     units,
		})
	}
	return out, nil
}

// Bookings returns all booking records, newest first.
func (e *Engine) Bookings() []*model.Booking {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*model.Booking, len(e.recent))
	for i, b := range e.recent {
		out[len(e.recent)-1-i] = b
	}
	return out
}

func dedup(units []string) []string {
	seen := make(map[string]struct{}, len(units))
	out := make([]string, 0, len(units))
	for _, u := range units {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
