package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/lithammer/shortuuid/v3"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/logging"
)

// HeaderCorrelationID is read from requests and echoed on responses.
const HeaderCorrelationID = "X-Correlation-ID"

// RequestLogger tags each request with a correlation id, stores a logger
// carrying it in the request context and writes one access log line per
// request.
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            id := req.Header.Get(HeaderCorrelationID)
            if id == "" {
                id = shortuuid.New()
            }
            c.Response().Header().Set(HeaderCorrelationID, id)

            log := base.With(zap.String("correlation_id", id))
            c.SetRequest(req.WithContext(logging.WithContext(req.Context(), log)))

            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            status := c.Response().Status
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("route", c.Path()),
                zap.String("path", req.URL.Path),
                zap.Int("status", status),
                zap.Duration("latency", time.Since(start)),
                zap.String("subject", subject(c)),
            }
            switch {
            case status >= 500:
                log.Error("request", append(fields, zap.Error(err))...)
            case status >= 400:
                log.Info("request", fields...)
            default:
                log.Debug("request", fields...)
            }
            return nil
        }
    }
}
