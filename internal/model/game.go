package model

// BookingType distinguishes exclusive room occupancy from shared occupancy.
type BookingType string

const (
    // BookingPrivate reserves the whole room for one party.
    BookingPrivate BookingType = "private"
    // BookingPublic shares the room with other parties up to its player cap.
    BookingPublic BookingType = "public"
)

// Valid reports whether t is one of the known booking types.
func (t BookingType) Valid() bool {
    return t == BookingPrivate || t == BookingPublic
}

// PricingTier is one band of per-person pricing.  MaxPlayers is nil for an
// open-ended tier ("8 or more").
type PricingTier struct {
    MinPlayers      int   `json:"min_players"`
    MaxPlayers      *int  `json:"max_players,omitempty"`
    UnitAmountCents int64 `json:"unit_amount_cents"`
}

// Game is a bookable experience type offered by an org.  A game is played
// in one or more rooms.  Bounds on the minute fields are enforced where
// games are created, not here.
//
// Fields:
//  DurationMins     – length of one session.
//  BufferMins       – idle time after a session before the room can be reused.
//  SlotIntervalMins – granularity at which start times are offered.
//  MinPlayers       – smallest party size accepted.
//  MaxPlayers       – largest party size accepted (rooms may cap lower).
//  AllowPrivate     – private bookings are allowed.
//  AllowPublic      – public bookings are allowed.
//  PricingTiers     – per-person price bands; empty means pricing is not configured.
type Game struct {
    ID               string        `db:"id" json:"id"`
    OrgID            string        `db:"org_id" json:"org_id"`
    Name             string        `db:"name" json:"name"`
    DurationMins     int           `db:"duration_mins" json:"duration_mins"`
    BufferMins       int           `db:"buffer_mins" json:"buffer_mins"`
    SlotIntervalMins int           `db:"slot_interval_mins" json:"slot_interval_mins"`
    MinPlayers       int           `db:"min_players" json:"min_players"`
    MaxPlayers       int           `db:"max_players" json:"max_players"`
    AllowPrivate     bool          `db:"allow_private" json:"allow_private"`
    AllowPublic      bool          `db:"allow_public" json:"allow_public"`
    PricingTiers     []PricingTier `db:"-" json:"pricing_tiers,omitempty"`
}

// Allows reports whether the game accepts bookings of type t.
func (g Game) Allows(t BookingType) bool {
    switch t {
    case BookingPrivate:
        return g.AllowPrivate
    case BookingPublic:
        return g.AllowPublic
    }
    return false
}
