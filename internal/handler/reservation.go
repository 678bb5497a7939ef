// Package handler contains the HTTP handlers exposing the reservation
// engine: public availability browsing, booking and the admin
// statistics view.  Handlers translate the engine's typed errors into
// HTTP statuses and never reach into the ledger directly.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/engine"
	"github.com/adilyam/show-reservation/internal/model"
)

// ReservationHandler serves the customer-facing booking API.
type ReservationHandler struct {
	Engine *engine.Engine
}

// NewReservationHandler constructs a ReservationHandler.  The engine
// must be non-nil.
func NewReservationHandler(e *engine.Engine) *ReservationHandler {
	if e == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: e}
}

// ListShows handles GET /api/shows.  It returns every show with the
// held/free state of each unit, ordered by start time.
func (h *ReservationHandler) ListShows(c echo.Context) error {
	shows, err := h.Engine.ListAvailability(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, shows)
}

// bookBody is the booking request wire shape.  "seats" is a single slot
// label for doctor shows and an array of seat labels otherwise, so it
// binds as raw JSON and is resolved against the show type afterwards.
type bookBody struct {
	ShowID string          `json:"showId"`
	Type   string          `json:"type"`
	Seats  json.RawMessage `json:"seats"`
	User   model.User      `json:"user"`
}

// Book handles POST /api/book.  Responses: 201 with the confirmed
// booking, 400 for malformed input or unknown unit labels, 404 for an
// unknown show, 409 with the contested unit list when another booking
// got there first.
func (h *ReservationHandler) Book(c echo.Context) error {
	var body bookBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowID == "" || body.Type == "" || body.User.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing parameters"})
	}
	units, err := parseUnits(body.Seats)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be a seat array or a slot string"})
	}

	booking, err := h.Engine.Book(c.Request().Context(), engine.BookRequest{
		ShowID: body.ShowID,
		Type:   model.ShowType(body.Type),
		Units:  units,
		User:   body.User,
	})
	if err != nil {
		var invalid *engine.InvalidRequestError
		var unknown *engine.UnknownUnitError
		var already *engine.AlreadyBookedError
		var persist *engine.PersistenceFailureError
		switch {
		case errors.Is(err, engine.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Reason})
		case errors.As(err, &unknown):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "unknown units",
				"unknown": unknown.Units,
			})
		case errors.As(err, &already):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some units already booked",
				"unavailable": already.Units,
			})
		case errors.As(err, &persist):
			// The claim stands and the booking is queued for
			// reconciliation; the client gets its confirmation.
			log.Printf("handler: %v", persist)
			return c.JSON(http.StatusCreated, booking)
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /api/bookings, newest first.
func (h *ReservationHandler) ListBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Bookings())
}

// parseUnits accepts either a JSON string (one slot label) or a JSON
// array of labels.
func parseUnits(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}
