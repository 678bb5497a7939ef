package repository

import (
	"context"
	"log"
	"time"

	"github.com/adilyam/show-reservation/internal/model"
)

// Seed provisions the demo catalog on first start: one bus trip with 40
// numbered seats, one movie screening with the 8x10 seat grid and one
// clinic day with the fixed slot list.  A non-empty catalog is left
// untouched.
func Seed(ctx context.Context, shows *ShowRepo) error {
	n, err := shows.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	seeds := []*model.Show{
		{
			ID:        "bus-1",
			Type:      model.ShowTypeBus,
			Title:     "City Express 08:00",
			StartTime: tomorrow.Add(8 * time.Hour),
			Units:     model.UnitsFor(model.ShowTypeBus, 40),
		},
		{
			ID:        "movie-1",
			Type:      model.ShowTypeMovie,
			Title:     "Interstellar",
			StartTime: tomorrow.Add(20 * time.Hour),
			Units:     model.UnitsFor(model.ShowTypeMovie, 0),
		},
		{
			ID:        "doc-1",
			Type:      model.ShowTypeDoctor,
			Title:     "Dr. Smith Clinic",
			StartTime: tomorrow.Add(9 * time.Hour),
			Units:     model.UnitsFor(model.ShowTypeDoctor, 0),
		},
	}

	for _, s := range seeds {
		if err := shows.Insert(ctx, s); err != nil {
			return err
		}
		if err := shows.InsertUnits(ctx, s.ID, s.Units); err != nil {
			return err
		}
	}
	log.Printf("seed: provisioned %d shows", len(seeds))
	return nil
}
