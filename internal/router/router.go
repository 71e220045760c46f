// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// Deps is everything the HTTP surface needs.  Redis may be nil; rate
// limiting and caching are then skipped.  An empty StripeWebhookSecret
// leaves the webhook route unregistered.
type Deps struct {
	Service             *booking.Service
	Log                 *zap.Logger
	Redis               *redis.Client
	RateLimit           config.RateLimitConfig
	Cache               config.CacheConfig
	JWTSecret           string
	StripeWebhookSecret string
	Checks              map[string]handler.Check
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e, d.Checks)
	RegisterBooking(e, d)
	RegisterOwner(e, handler.NewOwnerHandler(d.Service, d.Log), d.JWTSecret)
	if d.StripeWebhookSecret != "" {
		RegisterWebhooks(e, handler.NewStripeWebhook(d.Service, d.StripeWebhookSecret, d.Log))
	}
	return e
}

// RegisterRoutes registers the operational endpoints: health and
// Prometheus metrics.
func RegisterRoutes(e *echo.Echo, checks map[string]handler.Check) {
	e.GET("/healthz", handler.Health(checks))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterWebhooks registers payment provider callbacks.  They are
// authenticated by signature, not JWT.
func RegisterWebhooks(e *echo.Echo, stripe *handler.StripeWebhook) {
	e.POST("/v1/webhooks/stripe", stripe.Handle)
}
