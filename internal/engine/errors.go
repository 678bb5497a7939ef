// Package engine implements the reservation engine: it validates booking
// intents, delegates the atomic claim to the ledger, owns the resulting
// booking records and announces every confirmed booking to observers.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShowNotFound is returned when the requested show id does not
// resolve to a provisioned show.  Maps to HTTP 404.
var ErrShowNotFound = errors.New("show not found")

// InvalidRequestError reports a malformed booking intent: wrong show
// type, empty selection, missing user and so on.  These fail before the
// ledger is ever touched.  Maps to HTTP 400.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// UnknownUnitError reports unit labels that do not exist on the show.
// Like InvalidRequestError this is caught before any claim attempt.
// Maps to HTTP 400.
type UnknownUnitError struct {
	Units []string
}

func (e *UnknownUnitError) Error() string {
	return "unknown units: " + strings.Join(e.Units, ",")
}

// AlreadyBookedError reports a legitimate race loss: at least one
// requested unit was claimed by someone else first.  The client may
// retry against fresh availability data.  Maps to HTTP 409.
type AlreadyBookedError struct {
	Units []string
}

func (e *AlreadyBookedError) Error() string {
	return "already booked: " + strings.Join(e.Units, ",")
}

// PersistenceFailureError reports that a claim succeeded in memory but
// the write-through to the catalog store failed.  The in-memory state
// remains authoritative, the booking event has been emitted and the
// booking has been queued for out-of-band reconciliation; this error
// exists so operators see the gap rather than having it swallowed.
type PersistenceFailureError struct {
	BookingID string
	Err       error
}

func (e *PersistenceFailureError) Error() string {
	return fmt.Sprintf("booking %s confirmed but not persisted: %v", e.BookingID, e.Err)
}

func (e *PersistenceFailureError) Unwrap() error { return e.Err }
