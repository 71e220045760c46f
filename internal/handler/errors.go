package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/apperror"
    "github.com/iliyamo/venue-booking/internal/logging"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
    switch kind {
    case apperror.KindValidation:
        return http.StatusBadRequest
    case apperror.KindNotFound:
        return http.StatusNotFound
    case apperror.KindContention, apperror.KindState:
        return http.StatusConflict
    case apperror.KindPricing:
        return http.StatusUnprocessableEntity
    }
    return http.StatusInternalServerError
}

// writeError renders err as {"error": code, "message": msg, ...details}.
// Anything that is not a domain error is logged and reported as a 500
// without leaking its text.
func writeError(c echo.Context, log *zap.Logger, err error) error {
    ae, ok := apperror.As(err)
    if !ok {
        logging.FromContext(c.Request().Context(), log).Error("request failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "internal error"})
    }
    body := echo.Map{}
    for k, v := range ae.Details {
        body[k] = v
    }
    body["error"] = ae.Code
    body["message"] = ae.Message
    return c.JSON(statusFor(ae.Kind()), body)
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": apperror.CodeInvalidRequest, "message": msg})
}
