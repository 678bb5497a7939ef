package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

// BookingRepo persists confirmed bookings and mirrors the held state of
// their units.  Inserts are idempotent on booking id so the reconcile
// consumer can retry a delivery that raced an earlier success.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// InsertBooking writes a confirmed booking through to the catalog: the
// booking row plus the booking_id mirror on each claimed unit, in one
// transaction.  The booking has already been granted in memory; a
// failure here must be retried out of band, never rolled back.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings (id, show_id, type, units, user_name, user_email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id`
	if _, err := tx.ExecContext(ctx, q,
		b.ID, b.ShowID, string(b.Type), strings.Join(b.Units, ","),
		b.User.Name, b.User.Email, b.Status, b.CreatedAt.UTC(),
	); err != nil {
		return err
	}

	update := `UPDATE units SET booking_id = ? WHERE show_id = ? AND label IN (`
	args := []interface{}{b.ID, b.ShowID}
	for i, label := range b.Units {
		if i > 0 {
			update += ","
		}
		update += "?"
		args = append(args, label)
	}
	update += ")"
	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListRecent returns up to limit bookings, newest first.  Used to warm
// the engine's booking records at startup.
func (r *BookingRepo) ListRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	const q = `SELECT id, show_id, type, units, user_name, user_email, status, created_at
		FROM bookings ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Booking
	for rows.Next() {
		var b model.Booking
		var typ, units string
		var createdAt time.Time
		if err := rows.Scan(&b.ID, &b.ShowID, &typ, &units, &b.User.Name, &b.User.Email, &b.Status, &createdAt); err != nil {
			return nil, err
		}
		b.Type = model.ShowType(typ)
		b.CreatedAt = createdAt.UTC()
		if units != "" {
			b.Units = strings.Split(units, ",")
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
