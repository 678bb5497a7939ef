package repository

import (
	"context"
	"database/sql"

	"github.com/adilyam/show-reservation/internal/model"
)

// ShowRepo encapsulates database operations for shows and their units.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo given a DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// transactions across repositories.
func (r *ShowRepo) DB() *sql.DB { return r.db }

// Insert stores a show row.  Units are inserted separately via
// InsertUnits so provisioning can batch them.
func (r *ShowRepo) Insert(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (id, type, title, start_time) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.ID, string(s.Type), s.Title, s.StartTime.UTC())
	return err
}

// InsertUnits bulk-inserts the unit labels of a show in one statement.
// All units start free (NULL booking_id).
func (r *ShowRepo) InsertUnits(ctx context.Context, showID string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	query := `INSERT INTO units (show_id, label) VALUES `
	args := make([]interface{}, 0, len(labels)*2)
	for i, label := range labels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, showID, label)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Count returns the number of provisioned shows.  Used by the seed to
// stay idempotent across restarts.
func (r *ShowRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&n)
	return n, err
}

// LoadAll reads every show with its unit labels and held state.  The
// second return value maps show id -> unit label -> holding booking id
// for units that are held; free units are absent from the inner map.
// This is the startup feed the ledger is constructed from.
func (r *ShowRepo) LoadAll(ctx context.Context) ([]*model.Show, map[string]map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, title, start_time FROM shows ORDER BY start_time, id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var shows []*model.Show
	byID := make(map[string]*model.Show)
	for rows.Next() {
		var s model.Show
		var typ string
		if err := rows.Scan(&s.ID, &typ, &s.Title, &s.StartTime); err != nil {
			return nil, nil, err
		}
		s.Type = model.ShowType(typ)
		shows = append(shows, &s)
		byID[s.ID] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	held := make(map[string]map[string]string)
	unitRows, err := r.db.QueryContext(ctx, `SELECT show_id, label, booking_id FROM units ORDER BY id`)
	if err != nil {
		return nil, nil, err
	}
	defer unitRows.Close()
	for unitRows.Next() {
		var showID, label string
		var bookingID sql.NullString
		if err := unitRows.Scan(&showID, &label, &bookingID); err != nil {
			return nil, nil, err
		}
		show, ok := byID[showID]
		if !ok {
			continue // orphaned unit row, skip rather than fail startup
		}
		show.Units = append(show.Units, label)
		if bookingID.Valid && bookingID.String != "" {
			if held[showID] == nil {
				held[showID] = make(map[string]string)
			}
			held[showID][label] = bookingID.String
		}
	}
	if err := unitRows.Err(); err != nil {
		return nil, nil, err
	}
	return shows, held, nil
}
