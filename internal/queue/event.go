// Package queue carries booking confirmations over RabbitMQ: the publisher
// side implements booking.Notifier and the consumer side hands each event
// to a Mailer.
package queue

import (
    "time"

    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/pricing"
)

// BookingConfirmedQueue is the durable queue confirmations are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a hold is confirmed for the first
// time.  It contains everything a confirmation email needs so consumers
// never query the primary database.
type BookingConfirmedEvent struct {
    BookingID      string `json:"booking_id"`
    OrgID          string `json:"org_id"`
    CustomerEmail  string `json:"customer_email"`
    CustomerName   string `json:"customer_name"`
    GameName       string `json:"game_name"`
    Date           string `json:"date"`
    Time           string `json:"time"`
    Players        int    `json:"players"`
    ConfirmationID string `json:"confirmation_id"`
    VenueName      string `json:"venue_name"`
    TotalFormatted string `json:"total_formatted"`
    ConfirmedAt    string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent flattens a notification into the wire payload.
// Session date and time are the venue-local wall clock values.
func NewBookingConfirmedEvent(n booking.Notification) BookingConfirmedEvent {
    b := n.Booking
    return BookingConfirmedEvent{
        BookingID:      b.ID,
        OrgID:          b.OrgID,
        CustomerEmail:  b.Email,
        CustomerName:   b.Name,
        GameName:       n.Game.Name,
        Date:           b.StartAt.Format("2006-01-02"),
        Time:           b.StartAt.Format("15:04"),
        Players:        b.Players,
        ConfirmationID: b.ConfirmationCode(),
        VenueName:      n.Org.Name,
        TotalFormatted: pricing.FormatCents(b.TotalCents, b.Currency),
        ConfirmedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
    }
}
