package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/availability"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/pricing"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// SlotsInput selects the slots of one game on one date.
type SlotsInput struct {
	OrgID       string
	GameID      string
	Date        string
	BookingType model.BookingType
	Players     int
}

// CalendarInput selects the dates of a month that have open slots.
type CalendarInput struct {
	OrgID       string
	GameID      string
	Month       string
	BookingType model.BookingType
	Players     int
}

func partySizeError(minPlayers, maxPlayers int) error {
	return apperror.Newf(apperror.CodeInvalidPartySize, "party size must be between %d and %d", minPlayers, maxPlayers).
		With("minPlayers", minPlayers).With("maxPlayers", maxPlayers)
}

// checkRequest rejects booking types and party sizes the game does not
// offer before any slot is computed.
func checkRequest(game model.Game, bookingType model.BookingType, players int) error {
	if !game.Allows(bookingType) {
		return apperror.Newf(apperror.CodeBookingTypeNotAllowed, "booking type %q is not offered for this game", bookingType)
	}
	minPlayers := max(game.MinPlayers, 1)
	if players < minPlayers || players > game.MaxPlayers {
		return partySizeError(minPlayers, game.MaxPlayers)
	}
	return nil
}

// snapshot is everything the slot generator reads for one game.
type snapshot struct {
	game     model.Game
	rooms    []model.Room
	schedule model.Schedule
	holds    []model.Hold
	bookings []model.Booking
}

// loadSnapshot reads the game inventory and the holds and bookings that
// can block a session starting in [from, to).  A game without a schedule
// has no slots.
func (s *Service) loadSnapshot(ctx context.Context, orgID string, game model.Game, from, to time.Time) (snapshot, error) {
	snap := snapshot{game: game}
	rooms, err := s.store.ListRooms(ctx, orgID, game.ID)
	if err != nil {
		return snap, fmt.Errorf("list rooms: %w", err)
	}
	snap.rooms = rooms

	snap.schedule, err = s.store.GetSchedule(ctx, orgID, game.ID)
	if errors.Is(err, repository.ErrNotFound) {
		snap.schedule = model.Schedule{OrgID: orgID, GameID: game.ID, OpeningHours: []model.OpeningHours{}}
	} else if err != nil {
		return snap, fmt.Errorf("load schedule: %w", err)
	}

	buffer := time.Duration(game.BufferMins) * time.Minute
	from, to = from.Add(-buffer), to.Add(buffer)
	if snap.holds, err = s.store.ListActiveHolds(ctx, orgID, game.ID, from, to); err != nil {
		return snap, fmt.Errorf("list holds: %w", err)
	}
	if snap.bookings, err = s.store.ListConfirmedBookings(ctx, orgID, game.ID, from, to); err != nil {
		return snap, fmt.Errorf("list bookings: %w", err)
	}
	return snap, nil
}

func (snap snapshot) query(bookingType model.BookingType, players int, now, venueNow time.Time) availability.SlotQuery {
	return availability.SlotQuery{
		Game:        snap.game,
		Rooms:       snap.rooms,
		Schedule:    snap.schedule,
		BookingType: bookingType,
		Players:     players,
		Holds:       snap.holds,
		Bookings:    snap.bookings,
		Now:         now,
		VenueNow:    venueNow,
	}
}

// venueClock returns the current instant and the same moment on the
// venue's wall clock.  Schedules carry no zone, so past start times are
// judged against the latter.
func (s *Service) venueClock(ctx context.Context, orgID string) (time.Time, time.Time, error) {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	loc, err := org.Location()
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Newf(apperror.CodeInvalidSchedule, "venue time zone %q is not valid", org.Timezone)
	}
	now := s.clock()
	return now, availability.WallClock(now, loc), nil
}

// ListSlots returns the open slots of a game on a date.
func (s *Service) ListSlots(ctx context.Context, in SlotsInput) ([]availability.Slot, error) {
	game, err := s.loadGame(ctx, in.OrgID, in.GameID)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(game, in.BookingType, in.Players); err != nil {
		return nil, err
	}
	now, venueNow, err := s.venueClock(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}
	day, err := availability.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadSnapshot(ctx, in.OrgID, game, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	q := snap.query(in.BookingType, in.Players, now, venueNow)
	q.Date = in.Date
	return availability.ComputeSlots(q)
}

// AvailableDates returns the dates of a month with at least one open slot.
func (s *Service) AvailableDates(ctx context.Context, in CalendarInput) ([]string, error) {
	game, err := s.loadGame(ctx, in.OrgID, in.GameID)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(game, in.BookingType, in.Players); err != nil {
		return nil, err
	}
	now, venueNow, err := s.venueClock(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}
	first, next, err := availability.MonthRange(in.Month)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadSnapshot(ctx, in.OrgID, game, first, next)
	if err != nil {
		return nil, err
	}
	return availability.AvailableDates(availability.CalendarQuery{
		SlotQuery: snap.query(in.BookingType, in.Players, now, venueNow),
		Month:     in.Month,
	})
}

// Quote prices a party for a game using the org's service fee.
func (s *Service) Quote(ctx context.Context, orgID, gameID string, players int) (pricing.Quote, error) {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return pricing.Quote{}, err
	}
	game, err := s.loadGame(ctx, orgID, gameID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Calculate(&org, game, players)
}

// ListBookings returns the confirmed bookings of a game whose session
// intersects [from, to).
func (s *Service) ListBookings(ctx context.Context, orgID, gameID string, from, to time.Time) ([]model.Booking, error) {
	if _, err := s.loadGame(ctx, orgID, gameID); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, apperror.New(apperror.CodeInvalidRequest, "from must be before to")
	}
	bookings, err := s.store.ListConfirmedBookings(ctx, orgID, gameID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}
