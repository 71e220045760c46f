package handler

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-booking/internal/apperror"
    "github.com/iliyamo/venue-booking/internal/availability"
    "github.com/iliyamo/venue-booking/internal/model"
)

// queryPlayers reads the required positive "players" query parameter.
func queryPlayers(c echo.Context) (int, error) {
    raw := c.QueryParam("players")
    n, err := strconv.Atoi(raw)
    if err != nil {
        return 0, apperror.Newf(apperror.CodeInvalidRequest, "players must be an integer, got %q", raw)
    }
    return n, nil
}

// queryBookingType reads "type", defaulting to private.
func queryBookingType(c echo.Context) (model.BookingType, error) {
    raw := c.QueryParam("type")
    if raw == "" {
        return model.BookingPrivate, nil
    }
    t := model.BookingType(raw)
    if !t.Valid() {
        return "", apperror.Newf(apperror.CodeInvalidRequest, "type must be private or public, got %q", raw)
    }
    return t, nil
}

// queryInstant accepts RFC 3339 or a YYYY-MM-DD date.  A bare date used as
// an upper bound covers the whole day.
func queryInstant(c echo.Context, name string, upper bool) (time.Time, error) {
    raw := c.QueryParam(name)
    if t, err := time.Parse(time.RFC3339, raw); err == nil {
        return t.UTC(), nil
    }
    d, err := availability.ParseDate(raw)
    if err != nil {
        return time.Time{}, apperror.Newf(apperror.CodeInvalidRequest, "%s must be RFC 3339 or YYYY-MM-DD, got %q", name, raw)
    }
    if upper {
        d = d.AddDate(0, 0, 1)
    }
    return d, nil
}
