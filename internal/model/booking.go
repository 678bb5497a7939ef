package model

import "time"

// BookingStatusConfirmed is the only terminal state a booking can reach:
// a booking record exists exactly when its claim succeeded, and there is
// no cancellation or expiry path.
const BookingStatusConfirmed = "confirmed"

// User carries the customer details attached to a booking.  The engine
// treats both fields as opaque; they exist only so downstream consumers
// (notifications, admin views) know who booked.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Booking is the durable record of a successful claim.  It is created
// exactly once, when the ledger grants all requested units, and is
// immutable afterwards.
//
// Fields:
//  ID        – globally unique identifier minted by the claim.
//  ShowID    – show the units belong to.
//  Type      – the show's type, denormalized for per-type statistics.
//  Units     – unit labels claimed under this booking (one slot for
//              doctor shows, one or more seats otherwise).
//  User      – who booked.
//  Status    – always "confirmed" in this design.
//  CreatedAt – when the claim succeeded, in UTC.
type Booking struct {
	ID        string    `json:"id"`
	ShowID    string    `json:"showId"`
	Type      ShowType  `json:"type"`
	Units     []string  `json:"units"`
	User      User      `json:"user"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
