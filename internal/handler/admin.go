package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/engine"
)

// AdminHandler serves the operator-facing observation endpoints.
type AdminHandler struct {
	Engine *engine.Engine
}

// NewAdminHandler constructs an AdminHandler.  The engine must be
// non-nil.
func NewAdminHandler(e *engine.Engine) *AdminHandler {
	if e == nil {
		panic("nil engine passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: e}
}

// Stats handles GET /api/admin/stats: aggregate counts, per-show
// occupancy and the live subscriber count.  Read-only, no side effects.
func (h *AdminHandler) Stats(c echo.Context) error {
	snap, err := h.Engine.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, snap)
}
