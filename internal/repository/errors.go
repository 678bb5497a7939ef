// Package repository implements the catalog store: durable show, unit
// and booking records in MySQL.  The ledger's in-memory state stays the
// source of truth for conflict resolution; these repositories only feed
// it at startup and mirror its decisions afterwards.
package repository

import "errors"

// ErrShowNotFound is returned when a show id does not exist in the
// catalog. Handlers should translate this into an HTTP 404 response.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when a booking id does not exist in
// the catalog.
var ErrBookingNotFound = errors.New("booking not found")
