package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/hub"
)

// keepAliveInterval is how often an SSE comment line goes out so idle
// connections are not reaped by proxies and dead clients are noticed.
const keepAliveInterval = 30 * time.Second

// EventsHandler streams live domain events to subscribers.
type EventsHandler struct {
	Hub *hub.Hub
}

// NewEventsHandler constructs an EventsHandler.  The hub must be
// non-nil.
func NewEventsHandler(h *hub.Hub) *EventsHandler {
	if h == nil {
		panic("nil hub passed to NewEventsHandler")
	}
	return &EventsHandler{Hub: h}
}

// Stream handles GET /api/events as a server-sent-events feed.  Each
// event is one JSON envelope {event, payload, timestamp}.  The
// subscription lasts until the client disconnects; subscribing is what
// the admin statistics count as an active subscriber.
func (h *EventsHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := h.Hub.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-events:
			data, err := env.Encode()
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
				return nil
			}
			res.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
