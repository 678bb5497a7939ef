// Package ledger holds the in-memory authoritative state of every
// resource unit's availability.  It is the single arbiter for conflict
// resolution: the catalog database mirrors unit state but never decides
// who won a seat.
//
// Each show is owned by its own goroutine.  All claim, release and
// snapshot requests for a show travel through that goroutine's mailbox
// channel, which serializes them in arrival order without any polling or
// lock contention.  Requests for different shows never share a mailbox,
// so bookings on unrelated shows proceed fully in parallel.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/adilyam/show-reservation/internal/model"
)

// ErrUnknownShow is returned when an operation references a show the
// ledger was not provisioned with.
var ErrUnknownShow = errors.New("unknown show")

// ErrUnknownUnit is returned when a unit label does not exist on the
// show.  Callers are expected to resolve labels before claiming, so
// hitting this from the claim path indicates a programming error rather
// than a lost race.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrClosed is returned once the ledger has been shut down.
var ErrClosed = errors.New("ledger closed")

// Conflict reports a claim that lost the race: at least one requested
// unit was already held.  The ledger is left untouched; the caller may
// retry against fresh availability data.
type Conflict struct {
	AlreadyHeld []string // requested units that were held, in sorted order
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("units already held: %s", strings.Join(c.AlreadyHeld, ","))
}

type opKind int

const (
	opClaim opKind = iota
	opRelease
	opSnapshot
)

type request struct {
	kind  opKind
	units []string
	reply chan response // buffered(1) so the show goroutine never blocks on an abandoned caller
}

type response struct {
	bookingID string
	held      map[string]bool
	err       error
}

// showLedger owns one show's unit state.  The units map is touched only
// by the run goroutine; unitSet is immutable after construction and may
// be read from anywhere.
type showLedger struct {
	requests chan request
	unitSet  map[string]struct{}
}

// Ledger routes operations to per-show owner goroutines.  The show map
// is fixed at construction (shows are provisioned out of band and never
// appear mid-flight), so lookups need no lock.
type Ledger struct {
	shows map[string]*showLedger
	quit  chan struct{}
}

// ShowState seeds one show into the ledger: its full unit set plus any
// units already held from previously persisted bookings (booking id by
// unit label), so a restart rebuilds the same availability picture.
type ShowState struct {
	Show *model.Show
	Held map[string]string
}

// New constructs a ledger from catalog state and starts one owner
// goroutine per show.  The caller must Close the ledger to stop them.
func New(states []ShowState) *Ledger {
	l := &Ledger{
		shows: make(map[string]*showLedger, len(states)),
		quit:  make(chan struct{}),
	}
	for _, st := range states {
		units := make(map[string]string, len(st.Show.Units))
		set := make(map[string]struct{}, len(st.Show.Units))
		for _, u := range st.Show.Units {
			units[u] = ""
			set[u] = struct{}{}
		}
		for label, bookingID := range st.Held {
			if _, ok := units[label]; ok {
				units[label] = bookingID
			}
		}
		sl := &showLedger{
			requests: make(chan request, 64),
			unitSet:  set,
		}
		l.shows[st.Show.ID] = sl
		go sl.run(units, l.quit)
	}
	return l
}

// Close stops every show goroutine.  In-flight requests drain first;
// requests issued after Close fail with ErrClosed.
func (l *Ledger) Close() { close(l.quit) }

// HasShow reports whether the ledger was provisioned with the show.
func (l *Ledger) HasShow(showID string) bool {
	_, ok := l.shows[showID]
	return ok
}

// UnitExists reports whether a unit label belongs to the show's
// provisioned unit set.  The set is immutable, so this read never touches
// the show goroutine.
func (l *Ledger) UnitExists(showID, label string) bool {
	sl, ok := l.shows[showID]
	if !ok {
		return false
	}
	_, ok = sl.unitSet[label]
	return ok
}

// Claim atomically transitions every requested unit from free to held
// under a newly minted booking identity and returns that identity.  If
// any unit is already held the claim fails with *Conflict listing the
// held subset and no unit changes state.  Claims for the same show are
// served strictly in arrival order; ctx only bounds how long the caller
// waits, a claim already picked up by the show goroutine runs to its
// decision either way.
func (l *Ledger) Claim(ctx context.Context, showID string, units []string) (string, error) {
	resp, err := l.send(ctx, showID, request{kind: opClaim, units: units})
	if err != nil {
		return "", err
	}
	return resp.bookingID, resp.err
}

// Release marks the units free again.  The documented booking flow never
// releases; this exists for undo paths such as operator-driven
// reconciliation.
func (l *Ledger) Release(ctx context.Context, showID string, units []string) error {
	resp, err := l.send(ctx, showID, request{kind: opRelease, units: units})
	if err != nil {
		return err
	}
	return resp.err
}

// Snapshot returns the held state of every unit of the show as it
// existed at one real instant.  The read is served by the show goroutine,
// so it can never observe a half-applied claim.
func (l *Ledger) Snapshot(ctx context.Context, showID string) (map[string]bool, error) {
	resp, err := l.send(ctx, showID, request{kind: opSnapshot})
	if err != nil {
		return nil, err
	}
	return resp.held, resp.err
}

func (l *Ledger) send(ctx context.Context, showID string, req request) (response, error) {
	sl, ok := l.shows[showID]
	if !ok {
		return response{}, ErrUnknownShow
	}
	if err := ctx.Err(); err != nil {
		return response{}, err
	}
	req.reply = make(chan response, 1)
	select {
	case <-l.quit:
		return response{}, ErrClosed
	default:
	}
	select {
	case sl.requests <- req:
	case <-l.quit:
		return response{}, ErrClosed
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-l.quit:
		// Shutdown may race the owner goroutine's drain; a request it
		// already answered still wins.
		select {
		case resp := <-req.reply:
			return resp, nil
		default:
			return response{}, ErrClosed
		}
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// run is the show's owner goroutine.  It alone reads or writes the units
// map (unit label -> booking id, "" when free).
func (sl *showLedger) run(units map[string]string, quit <-chan struct{}) {
	for {
		select {
		case req := <-sl.requests:
			req.reply <- sl.handle(units, req)
		case <-quit:
			// Drain whatever was queued before shutdown so no caller hangs.
			for {
				select {
				case req := <-sl.requests:
					req.reply <- response{err: ErrClosed}
				default:
					return
				}
			}
		}
	}
}

func (sl *showLedger) handle(units map[string]string, req request) response {
	switch req.kind {
	case opClaim:
		var held []string
		for _, label := range req.units {
			holder, ok := units[label]
			if !ok {
				return response{err: fmt.Errorf("%w: %s", ErrUnknownUnit, label)}
			}
			if holder != "" {
				held = append(held, label)
			}
		}
		if len(held) > 0 {
			sort.Strings(held)
			return response{err: &Conflict{AlreadyHeld: held}}
		}
		bookingID := uuid.NewString()
		for _, label := range req.units {
			units[label] = bookingID
		}
		return response{bookingID: bookingID}
	case opRelease:
		for _, label := range req.units {
			if _, ok := units[label]; !ok {
				return response{err: fmt.Errorf("%w: %s", ErrUnknownUnit, label)}
			}
		}
		for _, label := range req.units {
			units[label] = ""
		}
		return response{}
	case opSnapshot:
		held := make(map[string]bool, len(units))
		for label, holder := range units {
			held[label] = holder != ""
		}
		return response{held: held}
	}
	return response{err: errors.New("unknown ledger operation")}
}
