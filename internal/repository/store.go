package repository

import (
    "context"
    "time"

    "github.com/iliyamo/venue-booking/internal/model"
)

// Store is the narrow persistence interface the booking engine depends on.
// Every read and write is scoped by organization.
//
// Correctness under concurrency comes from two conditional writes:
//   - InsertHold only succeeds if the room's version is still the one the
//     caller observed when it read the contention snapshot.
//   - InsertBooking is unique on both the booking id and the hold id.
type Store interface {
    GetOrg(ctx context.Context, orgID string) (model.Org, error)
    GetGame(ctx context.Context, orgID, gameID string) (model.Game, error)
    GetRoom(ctx context.Context, orgID, roomID string) (model.Room, error)
    ListRooms(ctx context.Context, orgID, gameID string) ([]model.Room, error)
    GetSchedule(ctx context.Context, orgID, gameID string) (model.Schedule, error)

    GetHold(ctx context.Context, orgID, holdID string) (model.Hold, error)
    // ListActiveHolds returns holds persisted as active whose session
    // intersects [from, to).  Lapsed holds are included; callers apply
    // lazy expiry themselves.
    ListActiveHolds(ctx context.Context, orgID, gameID string, from, to time.Time) ([]model.Hold, error)
    InsertHold(ctx context.Context, hold model.Hold, expectedRoomVersion uint64) error
    // TransitionHold moves a hold to status `to` if its current status is
    // one of `from`.  bookingID and at are stored when non-empty/non-zero
    // (at becomes confirmed_at for confirmations).  It reports whether a
    // row changed.
    TransitionHold(ctx context.Context, orgID, holdID string, from []model.HoldStatus, to model.HoldStatus, bookingID string, at time.Time) (bool, error)
    // ExpireHolds flips every active hold with expires_at <= now to
    // expired, across all organizations.
    ExpireHolds(ctx context.Context, now time.Time) (int64, error)

    GetBooking(ctx context.Context, orgID, bookingID string) (model.Booking, error)
    GetBookingByHold(ctx context.Context, orgID, holdID string) (model.Booking, error)
    ListConfirmedBookings(ctx context.Context, orgID, gameID string, from, to time.Time) ([]model.Booking, error)
    InsertBooking(ctx context.Context, booking model.Booking) error

    SaveOrg(ctx context.Context, org model.Org) error
    SaveGame(ctx context.Context, game model.Game) error
    SaveRoom(ctx context.Context, room model.Room) error
    SaveSchedule(ctx context.Context, schedule model.Schedule) error
}
