// Package queue carries confirmed bookings over RabbitMQ: a fan-out of
// booking.created for downstream consumers, and booking.reconcile for
// bookings whose write-through persist failed and must be retried.
package queue

import (
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

const (
	// BookingCreatedQueue receives every confirmed booking.
	BookingCreatedQueue = "booking.created"
	// BookingReconcileQueue receives bookings the catalog write missed;
	// the reconcile consumer drains it until the insert sticks.
	BookingReconcileQueue = "booking.reconcile"
)

// BookingMessage is the broker payload for a confirmed booking.  It is
// self-contained so consumers never need to query the primary database.
type BookingMessage struct {
	ID        string    `json:"id"`
	ShowID    string    `json:"show_id"`
	Type      string    `json:"type"`
	Units     []string  `json:"units"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBookingMessage converts a booking record into its broker payload.
func NewBookingMessage(b *model.Booking) BookingMessage {
	return BookingMessage{
		ID:        b.ID,
		ShowID:    b.ShowID,
		Type:      string(b.Type),
		Units:     b.Units,
		UserName:  b.User.Name,
		UserEmail: b.User.Email,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

// Booking converts the payload back into a booking record.
func (m BookingMessage) Booking() *model.Booking {
	return &model.Booking{
		ID:        m.ID,
		ShowID:    m.ShowID,
		Type:      model.ShowType(m.Type),
		Units:     m.Units,
		User:      model.User{Name: m.UserName, Email: m.UserEmail},
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}
