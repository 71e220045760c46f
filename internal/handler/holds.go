package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/model"
)

// HoldHandler serves the customer booking flow: place a hold, look at it
// and confirm it.
type HoldHandler struct {
    Service *booking.Service
    Log     *zap.Logger
}

// NewHoldHandler panics on a nil service.
func NewHoldHandler(svc *booking.Service, log *zap.Logger) *HoldHandler {
    if svc == nil {
        panic("nil service passed to NewHoldHandler")
    }
    return &HoldHandler{Service: svc, Log: log}
}

// confirmResponse is the body of a confirmation.
type confirmResponse struct {
    Booking          model.Booking `json:"booking"`
    ConfirmationCode string        `json:"confirmation_code"`
    Replayed         bool          `json:"replayed"`
}

// Create handles POST /v1/orgs/:org_id/holds and returns 201 with the
// active hold.
func (h *HoldHandler) Create(c echo.Context) error {
    var in booking.CreateHoldInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "invalid request body")
    }
    in.OrgID = c.Param("org_id")
    if in.GameID == "" || in.RoomID == "" {
        return badRequest(c, "game_id and room_id are required")
    }
    if !in.BookingType.Valid() {
        return badRequest(c, "booking_type must be private or public")
    }
    hold, err := h.Service.CreateHold(c.Request().Context(), in)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, hold)
}

// Get handles GET /v1/orgs/:org_id/holds/:hold_id.  The status reflects
// lazy expiry.
func (h *HoldHandler) Get(c echo.Context) error {
    hold, err := h.Service.GetHold(c.Request().Context(), c.Param("org_id"), c.Param("hold_id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, hold)
}

// Confirm handles POST /v1/orgs/:org_id/holds/:hold_id/confirm.  It
// answers 201 when the booking is created and 200 when it already
// existed.  Customers never supply payment proof here; paid confirmations
// arrive through the payment webhook.
func (h *HoldHandler) Confirm(c echo.Context) error {
    res, err := h.Service.ConfirmHold(c.Request().Context(), c.Param("org_id"), c.Param("hold_id"), nil)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    status := http.StatusCreated
    if res.Replayed {
        status = http.StatusOK
    }
    return c.JSON(status, confirmResponse{
        Booking:          res.Booking,
        ConfirmationCode: res.Booking.ConfirmationCode(),
        Replayed:         res.Replayed,
    })
}
