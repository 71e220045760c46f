package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole aborts with 403 unless the role claim stored by JWTAuth is
// one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return forbidden(c, "role not allowed")
            }
            return next(c)
        }
    }
}

// RequireOrgScope aborts with 403 when the :org_id path parameter differs
// from the org claim.  An owner only ever sees their own tenant.
func RequireOrgScope() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            org, ok := c.Get(CtxOrgID).(string)
            if !ok || org == "" || org != c.Param("org_id") {
                return forbidden(c, "organization out of scope")
            }
            return next(c)
        }
    }
}

func forbidden(c echo.Context, msg string) error {
    return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": msg})
}
