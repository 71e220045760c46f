package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RegisterBooking registers the anonymous customer endpoints under
// /v1/orgs/:org_id.  Availability reads go through the response cache;
// hold writes go through the rate limiter.
func RegisterBooking(e *echo.Echo, d Deps) {
	avail := handler.NewAvailabilityHandler(d.Service, d.Log)
	holds := handler.NewHoldHandler(d.Service, d.Log)

	g := e.Group("/v1/orgs/:org_id")

	cached := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	g.GET("/games/:game_id/availability", avail.Slots, cached)
	g.GET("/games/:game_id/calendar", avail.Calendar, cached)
	g.GET("/games/:game_id/quote", avail.Quote, cached)

	limited := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	g.POST("/holds", holds.Create, limited)
	g.GET("/holds/:hold_id", holds.Get)
	g.POST("/holds/:hold_id/confirm", holds.Confirm, limited)
}
