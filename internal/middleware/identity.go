package middleware

// identity.go holds the request identity helpers shared by the rate
// limiter and the request logger.

import (
    "github.com/labstack/echo/v4"
)

// subject returns the authenticated user id, or "anon" on public routes.
func subject(c echo.Context) string {
    if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
        return s
    }
    return "anon"
}

// tenant returns the :org_id path parameter, or "none" on routes without
// one (health, webhooks).
func tenant(c echo.Context) string {
    if org := c.Param("org_id"); org != "" {
        return org
    }
    return "none"
}
