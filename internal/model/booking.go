package model

import (
    "strings"
    "time"
)

// BookingStatus is the state of a permanent booking.
type BookingStatus string

const (
    BookingConfirmed BookingStatus = "confirmed"
    BookingCanceled  BookingStatus = "canceled"
)

// PaymentUnpaid marks bookings confirmed without any payment proof.
const PaymentUnpaid = "unpaid"

// Booking is a confirmed reservation created from exactly one hold.  Its
// ID is derived from the hold ID so duplicate confirmations converge on
// the same row.
type Booking struct {
    ID               string        `db:"id" json:"id"`
    OrgID            string        `db:"org_id" json:"org_id"`
    GameID           string        `db:"game_id" json:"game_id"`
    RoomID           string        `db:"room_id" json:"room_id"`
    HoldID           string        `db:"hold_id" json:"hold_id"`
    BookingType      BookingType   `db:"booking_type" json:"booking_type"`
    StartAt          time.Time     `db:"start_at" json:"start_at"`
    EndAt            time.Time     `db:"end_at" json:"end_at"`
    Players          int           `db:"players" json:"players"`
    Status           BookingStatus `db:"status" json:"status"`
    Customer         `json:"customer"`
    PromoCode        string        `db:"promo_code" json:"promo_code,omitempty"`
    Currency         string        `db:"currency" json:"currency"`
    SubtotalCents    int64         `db:"subtotal_cents" json:"subtotal_cents"`
    FeeCents         int64         `db:"fee_cents" json:"fee_cents"`
    TotalCents       int64         `db:"total_cents" json:"total_cents"`
    PaymentStatus    string        `db:"payment_status" json:"payment_status"`
    PaidCents        int64         `db:"paid_cents" json:"paid_cents"`
    ExternalChargeID string        `db:"external_charge_id" json:"external_charge_id,omitempty"`
    PaidAt           *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
    CreatedAt        time.Time     `db:"created_at" json:"created_at"`
}

// ConfirmationCode is the short reference shown to customers.
func (b Booking) ConfirmationCode() string {
    code := strings.ReplaceAll(b.ID, "-", "")
    if len(code) > 8 {
        code = code[:8]
    }
    return strings.ToUpper(code)
}

// PaymentProof is supplied asynchronously by the payment provider.  The
// core never talks to the provider; it only reads this object.
type PaymentProof struct {
    Status           string     `json:"status"`
    PaidCents        int64      `json:"paid_cents"`
    RemainingCents   int64      `json:"remaining_cents"`
    PaidAt           *time.Time `json:"paid_at,omitempty"`
    ExternalChargeID string     `json:"external_charge_id"`
}

// HasExternalCharge reports whether the proof references a real charge.
func (p *PaymentProof) HasExternalCharge() bool {
    return p != nil && p.ExternalChargeID != ""
}
