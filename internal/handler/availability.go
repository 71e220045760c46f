package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/booking"
)

// AvailabilityHandler serves the anonymous read side: slots, calendar and
// quotes.  Responses are safe to cache for a few seconds.
type AvailabilityHandler struct {
    Service *booking.Service
    Log     *zap.Logger
}

// NewAvailabilityHandler panics on a nil service.
func NewAvailabilityHandler(svc *booking.Service, log *zap.Logger) *AvailabilityHandler {
    if svc == nil {
        panic("nil service passed to NewAvailabilityHandler")
    }
    return &AvailabilityHandler{Service: svc, Log: log}
}

// Slots handles GET /v1/orgs/:org_id/games/:game_id/availability.
// Query: date (YYYY-MM-DD), type (private|public), players.
func (h *AvailabilityHandler) Slots(c echo.Context) error {
    bookingType, err := queryBookingType(c)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    players, err := queryPlayers(c)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    slots, err := h.Service.ListSlots(c.Request().Context(), booking.SlotsInput{
        OrgID:       c.Param("org_id"),
        GameID:      c.Param("game_id"),
        Date:        c.QueryParam("date"),
        BookingType: bookingType,
        Players:     players,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// Calendar handles GET /v1/orgs/:org_id/games/:game_id/calendar.
// Query: month (YYYY-MM), type, players.
func (h *AvailabilityHandler) Calendar(c echo.Context) error {
    bookingType, err := queryBookingType(c)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    players, err := queryPlayers(c)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    dates, err := h.Service.AvailableDates(c.Request().Context(), booking.CalendarInput{
        OrgID:       c.Param("org_id"),
        GameID:      c.Param("game_id"),
        Month:       c.QueryParam("month"),
        BookingType: bookingType,
        Players:     players,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"month": c.QueryParam("month"), "dates": dates})
}

// Quote handles GET /v1/orgs/:org_id/games/:game_id/quote?players=N.
func (h *AvailabilityHandler) Quote(c echo.Context) error {
    players, err := queryPlayers(c)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    q, err := h.Service.Quote(c.Request().Context(), c.Param("org_id"), c.Param("game_id"), players)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, q)
}
