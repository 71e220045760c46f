// Package apperror defines the coded errors returned by the booking core.
// Codes are stable strings so that HTTP handlers, cron jobs and webhook
// consumers can all branch on them without depending on a transport.
package apperror

import (
	"errors"
	"fmt"
)

// Validation codes.
const (
	CodeInvalidPartySize      = "invalid_party_size"
	CodeInvalidTimeWindow     = "invalid_time_window"
	CodeBookingTypeNotAllowed = "booking_type_not_allowed"
	CodeInvalidSchedule       = "invalid_schedule"
	CodeInvalidRequest        = "invalid_request"
)

// Not-found codes.
const (
	CodeOrgNotFound      = "org_not_found"
	CodeGameNotFound     = "game_not_found"
	CodeRoomNotFound     = "room_not_found"
	CodeScheduleNotFound = "schedule_not_found"
	CodeHoldNotFound     = "hold_not_found"
	CodeBookingNotFound  = "booking_not_found"
)

// Contention and state codes.
const (
	CodeSlotUnavailable      = "slot_unavailable"
	CodeSlotCapacityExceeded = "slot_capacity_exceeded"
	CodeHoldNotActive        = "hold_not_active"
)

// Pricing codes.
const (
	CodePricingNotConfigured = "pricing_not_configured"
	CodeInvalidPricingData   = "invalid_pricing_data"
	CodeInvalidTotal         = "invalid_total"
)

// Kind groups codes into the categories callers act on.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindContention
	KindState
	KindPricing
)

var kinds = map[string]Kind{
	CodeInvalidPartySize:      KindValidation,
	CodeInvalidTimeWindow:     KindValidation,
	CodeBookingTypeNotAllowed: KindValidation,
	CodeInvalidSchedule:       KindValidation,
	CodeInvalidRequest:        KindValidation,
	CodeOrgNotFound:           KindNotFound,
	CodeGameNotFound:          KindNotFound,
	CodeRoomNotFound:          KindNotFound,
	CodeScheduleNotFound:      KindNotFound,
	CodeHoldNotFound:          KindNotFound,
	CodeBookingNotFound:       KindNotFound,
	CodeSlotUnavailable:       KindContention,
	CodeSlotCapacityExceeded:  KindContention,
	CodeHoldNotActive:         KindState,
	CodePricingNotConfigured:  KindPricing,
	CodeInvalidPricingData:    KindPricing,
	CodeInvalidTotal:          KindPricing,
}

// Error is a domain failure with a stable code, a human readable message
// and optional structured details (e.g. remainingPlayers).
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Kind returns the category of the error code.
func (e *Error) Kind() Kind {
	return kinds[e.Code]
}

// New returns an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// With returns a copy of e carrying an extra detail.
func (e *Error) With(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" when err is not a domain error.
func CodeOf(err error) string {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
