package model

import "time"

// HoldTTL is how long a hold stays active before it lapses.
const HoldTTL = 10 * time.Minute

// HoldStatus is the lifecycle state of a hold.
type HoldStatus string

const (
    HoldActive    HoldStatus = "active"
    HoldExpired   HoldStatus = "expired"
    HoldConfirmed HoldStatus = "confirmed"
    HoldCanceled  HoldStatus = "canceled"
)

// Customer is the contact captured with a hold and copied to the booking.
type Customer struct {
    Name  string `db:"customer_name" json:"name"`
    Email string `db:"customer_email" json:"email"`
    Phone string `db:"customer_phone" json:"phone,omitempty"`
}

// Hold is a time-boxed soft reservation of a room window.  A hold is
// created active and ends confirmed, expired or canceled.  StartAt/EndAt
// are the customer-visible session bounds; the game's buffer is applied on
// top of EndAt when checking contention.
//
// Pricing fields are computed when the hold is created and copied onto
// the booking at confirmation.
type Hold struct {
    ID            string      `db:"id" json:"id"`
    OrgID         string      `db:"org_id" json:"org_id"`
    GameID        string      `db:"game_id" json:"game_id"`
    RoomID        string      `db:"room_id" json:"room_id"`
    BookingType   BookingType `db:"booking_type" json:"booking_type"`
    StartAt       time.Time   `db:"start_at" json:"start_at"`
    EndAt         time.Time   `db:"end_at" json:"end_at"`
    Players       int         `db:"players" json:"players"`
    Status        HoldStatus  `db:"status" json:"status"`
    Customer      `json:"customer"`
    PromoCode     string      `db:"promo_code" json:"promo_code,omitempty"`
    Currency      string      `db:"currency" json:"currency"`
    SubtotalCents int64       `db:"subtotal_cents" json:"subtotal_cents"`
    FeeCents      int64       `db:"fee_cents" json:"fee_cents"`
    TotalCents    int64       `db:"total_cents" json:"total_cents"`
    BookingID     string      `db:"booking_id" json:"booking_id,omitempty"`
    CreatedAt     time.Time   `db:"created_at" json:"created_at"`
    ExpiresAt     time.Time   `db:"expires_at" json:"expires_at"`
    ConfirmedAt   *time.Time  `db:"confirmed_at" json:"confirmed_at,omitempty"`
    UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// Lapsed reports whether an active hold has passed its expiry at now.
func (h Hold) Lapsed(now time.Time) bool {
    return h.Status == HoldActive && !h.ExpiresAt.After(now)
}

// EffectiveStatus applies lazy expiry: an active hold whose ExpiresAt is
// at or before now counts as expired even if no sweep has persisted it.
func (h Hold) EffectiveStatus(now time.Time) HoldStatus {
    if h.Lapsed(now) {
        return HoldExpired
    }
    return h.Status
}

// IsTerminal reports whether the hold can no longer change state.
func (h Hold) IsTerminal() bool {
    return h.Status == HoldConfirmed || h.Status == HoldExpired || h.Status == HoldCanceled
}
