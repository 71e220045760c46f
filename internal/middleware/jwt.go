package middleware // reusable HTTP middleware for the booking API

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
    CtxOrgID  = "org_id"
)

// JWTAuth returns an Echo middleware that validates an HS256 Bearer token
// and stores its sub, role and org claims in the request context.  Only
// owner routes are wrapped; public booking calls are anonymous.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }

            sub, _ := claims.GetSubject()
            role, _ := claims["role"].(string)
            org, _ := claims["org"].(string)
            if sub == "" || org == "" {
                return unauthorized(c, "invalid claims")
            }
            c.Set(CtxUserID, sub)
            c.Set(CtxRole, role)
            c.Set(CtxOrgID, org)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
