package model

import (
	"fmt"
	"time"
)

// ShowType distinguishes the three kinds of bookable shows.  The type
// decides what a resource unit means: bus and movie shows offer seats,
// doctor shows offer appointment slots.
type ShowType string

const (
	ShowTypeBus    ShowType = "bus"    // a bus trip with numbered seats
	ShowTypeMovie  ShowType = "movie"  // a screening with a row-column seat grid
	ShowTypeDoctor ShowType = "doctor" // a clinic day with fixed time slots
)

// Valid reports whether t is one of the known show types.
func (t ShowType) Valid() bool {
	switch t {
	case ShowTypeBus, ShowTypeMovie, ShowTypeDoctor:
		return true
	}
	return false
}

// UsesSlots reports whether units of this show type are time slots
// rather than seats.  Slot shows accept exactly one unit per booking.
func (t ShowType) UsesSlots() bool { return t == ShowTypeDoctor }

// Show represents a schedulable event offering bookable units.  A show is
// provisioned once with its full unit set; units are never added or
// removed while bookings exist.
//
// Fields:
//  ID        – external identifier, unique across all shows.
//  Type      – bus, movie or doctor.
//  Title     – human readable name.
//  StartTime – when the show begins.
//  Units     – unit labels in provisioning order (seat ids or slot times).
type Show struct {
	ID        string    `json:"id"`
	Type      ShowType  `json:"type"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Units     []string  `json:"-"`
}

// DoctorSlots is the fixed slot grid every doctor show is provisioned
// with: half-hour appointments through the morning plus two after lunch.
var DoctorSlots = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "14:00", "14:30"}

const (
	movieRows = 8
	movieCols = 10
)

// UnitsFor builds the default unit label set for a show of the given
// type: bus shows get seats "1".."total", movie shows an 8x10 "row-col"
// grid and doctor shows the fixed slot list.  total is only consulted for
// bus shows.  Construction lives here so provisioning is the single place
// where type-specific unit shapes exist; everything downstream treats
// units as opaque labels.
func UnitsFor(t ShowType, total int) []string {
	switch t {
	case ShowTypeBus:
		units := make([]string, 0, total)
		for i := 1; i <= total; i++ {
			units = append(units, fmt.Sprintf("%d", i))
		}
		return units
	case ShowTypeMovie:
		units := make([]string, 0, movieRows*movieCols)
		for r := 1; r <= movieRows; r++ {
			for c := 1; c <= movieCols; c++ {
				units = append(units, fmt.Sprintf("%d-%d", r, c))
			}
		}
		return units
	case ShowTypeDoctor:
		units := make([]string, len(DoctorSlots))
		copy(units, DoctorSlots)
		return units
	}
	return nil
}
