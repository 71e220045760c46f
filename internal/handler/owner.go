package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/logging"
)

// OwnerHandler serves venue owner operations.  JWT, role and org scope
// are enforced by middleware before these run.
type OwnerHandler struct {
    Service *booking.Service
    Log     *zap.Logger
}

// NewOwnerHandler panics on a nil service.
func NewOwnerHandler(svc *booking.Service, log *zap.Logger) *OwnerHandler {
    if svc == nil {
        panic("nil service passed to NewOwnerHandler")
    }
    return &OwnerHandler{Service: svc, Log: log}
}

// CancelHold handles DELETE /v1/owner/orgs/:org_id/holds/:hold_id.
// Canceling a hold that already ended returns it unchanged.
func (h *OwnerHandler) CancelHold(c echo.Context) error {
    hold, err := h.Service.CancelHold(c.Request().Context(), c.Param("org_id"), c.Param("hold_id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, hold)
}

// ListBookings handles GET /v1/owner/orgs/:org_id/games/:game_id/bookings
// with from/to bounds (RFC 3339 or YYYY-MM-DD; a date "to" is inclusive).
func (h *OwnerHandler) ListBookings(c echo.Context) error {
    from, err := queryInstant(c, "from", false)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    to, err := queryInstant(c, "to", true)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    bookings, err := h.Service.ListBookings(c.Request().Context(), c.Param("org_id"), c.Param("game_id"), from, to)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}

// Sweep handles POST /v1/owner/orgs/:org_id/sweep.  Expiry is global, so
// an owner triggering it also expires other tenants' lapsed holds; the
// outcome is identical to the scheduled sweep.
func (h *OwnerHandler) Sweep(c echo.Context) error {
    ctx := c.Request().Context()
    n, err := h.Service.ExpireStaleHolds(ctx)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    logging.FromContext(ctx, h.Log).Info("manual sweep", zap.String("org_id", c.Param("org_id")), zap.Int64("expired", n))
    return c.JSON(http.StatusOK, echo.Map{"expired": n})
}
