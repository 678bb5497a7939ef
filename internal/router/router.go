package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/handler"
)

// RegisterRoutes wires every endpoint of the reservation API onto the
// provided Echo instance.  bookLimiter guards only the booking
// endpoint: reads are cheap in-memory snapshots and stay unthrottled.
func RegisterRoutes(e *echo.Echo, res *handler.ReservationHandler, admin *handler.AdminHandler, events *handler.EventsHandler, bookLimiter echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	// Public availability listing: every show with per-unit held/free state.
	api.GET("/shows", res.ListShows)
	// The booking operation itself, rate limited per client.
	api.POST("/book", res.Book, bookLimiter)
	// All bookings, newest first.
	api.GET("/bookings", res.ListBookings)
	// Live event feed (server-sent events); connected clients are the
	// subscriber count reported by the stats endpoint.
	api.GET("/events", events.Stream)
	// Operator occupancy snapshot.
	api.GET("/admin/stats", admin.Stats)
}
