package engine

import (
	"context"
	"fmt"

	"github.com/adilyam/show-reservation/internal/model"
)

// ShowOccupancy summarizes one show's unit usage at a point in time.
type ShowOccupancy struct {
	ShowID        string         `json:"showId"`
	Title         string         `json:"title"`
	Type          model.ShowType `json:"type"`
	Total         int            `json:"total"`
	Booked        int            `json:"booked"`
	Available     int            `json:"available"`
	OccupancyRate string         `json:"occupancyRate"`
}

// OccupancySnapshot is the admin statistics view: aggregate counts plus
// per-show occupancy.  ActiveSubscribers is whatever the transport layer
// reported when the snapshot was taken.
type OccupancySnapshot struct {
	TotalShowsCount    int                    `json:"totalShowsCount"`
	TotalBookingsCount int                    `json:"totalBookingsCount"`
	ActiveSubscribers  int                    `json:"activeSubscribers"`
	ShowsBreakdown     map[model.ShowType]int `json:"showsBreakdown"`
	BookingsByType     map[model.ShowType]int `json:"bookingsByType"`
	OccupancyByShow    []ShowOccupancy        `json:"occupancyByShow"`
}

// Stats aggregates occupancy across every show.  A show with zero units
// reports 0.00% rather than a division by zero.
func (e *Engine) Stats(ctx context.Context) (OccupancySnapshot, error) {
	snap := OccupancySnapshot{
		TotalShowsCount:   len(e.shows),
		ActiveSubscribers: e.subscribers(),
		ShowsBreakdown: map[model.ShowType]int{
			model.ShowTypeBus:    0,
			model.ShowTypeMovie:  0,
			model.ShowTypeDoctor: 0,
		},
		BookingsByType: map[model.ShowType]int{
			model.ShowTypeBus:    0,
			model.ShowTypeMovie:  0,
			model.ShowTypeDoctor: 0,
		},
		OccupancyByShow: make([]ShowOccupancy, 0, len(e.shows)),
	}

	e.mu.RLock()
	snap.TotalBookingsCount = len(e.bookings)
	for _, b := range e.bookings {
		snap.BookingsByType[b.Type]++
	}
	e.mu.RUnlock()

	for _, id := range e.showOrder {
		show := e.shows[id]
		snap.ShowsBreakdown[show.Type]++
		held, err := e.ledger.Snapshot(ctx, id)
		if err != nil {
			return OccupancySnapshot{}, err
		}
		booked := 0
		for _, h := range held {
			if h {
				booked++
			}
		}
		total := len(held)
		snap.OccupancyByShow = append(snap.OccupancyByShow, ShowOccupancy{
			ShowID:        show.ID,
			Title:         show.Title,
			Type:          show.Type,
			Total:         total,
			Booked:        booked,
			Available:     total - booked,
			OccupancyRate: occupancyRate(booked, total),
		})
	}
	return snap, nil
}

// occupancyRate formats booked/total as a percentage with two decimals;
// an empty show is defined as 0.00% occupied.
func occupancyRate(booked, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(booked)/float64(total)*100)
}
