package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RoleOwner is the role claim owner tokens carry.
const RoleOwner = "OWNER"

// RegisterOwner registers OWNER-scoped endpoints under /v1/owner/orgs/:org_id.
// All routes require a valid JWT, the OWNER role and an org claim matching
// the path.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/owner/orgs/:org_id",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(RoleOwner),
		middleware.RequireOrgScope(),
	)

	g.DELETE("/holds/:hold_id", o.CancelHold)
	g.GET("/games/:game_id/bookings", o.ListBookings)
	g.POST("/sweep", o.Sweep)
}
