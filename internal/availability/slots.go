package availability

import (
	"time"

	"github.com/samber/lo"

	"github.com/iliyamo/venue-booking/internal/model"
)

// SlotQuery is everything the slot generator needs.  Holds and Bookings
// are the current contention snapshot for the game; Now is the instant
// used for lazy hold expiry.  VenueNow is the venue wall clock, labelled
// UTC like the generated start times, and start times before it are
// dropped.  Zero values disable either check.
type SlotQuery struct {
	Game        model.Game
	Rooms       []model.Room
	Schedule    model.Schedule
	Date        string
	BookingType model.BookingType
	Players     int
	Holds       []model.Hold
	Bookings    []model.Booking
	Now         time.Time
	VenueNow    time.Time
}

// Slot is one bookable start time.  EndAt is the customer-visible end
// (no buffer).  RoomID names the first room that can take the booking;
// the hold request re-validates and may target any room of the game.
// RemainingCapacity is only set for public slots and reports the best
// qualifying room.
type Slot struct {
	StartAt           time.Time `json:"start_at"`
	EndAt             time.Time `json:"end_at"`
	RoomID            string    `json:"room_id,omitempty"`
	RemainingCapacity *int      `json:"remaining_capacity,omitempty"`
	AvailableRooms    int       `json:"available_rooms"`
}

// ComputeSlots returns the slots of q.Date that at least one enabled room
// of the game can host for q.Players under q.BookingType.  Rooms smaller
// than the party are skipped, as the hold would be refused there.  It is a
// pure function of its input.  Booking type and party size checks against
// the game happen before this is called.
func ComputeSlots(q SlotQuery) ([]Slot, error) {
	day, err := ParseDate(q.Date)
	if err != nil {
		return nil, err
	}
	return computeDay(q, day)
}

func computeDay(q SlotQuery, day time.Time) ([]Slot, error) {
	rooms := lo.Filter(q.Rooms, func(r model.Room, _ int) bool {
		return r.Enabled && r.GameID == q.Game.ID && r.MaxPlayers >= q.Players
	})
	if len(rooms) == 0 {
		return []Slot{}, nil
	}
	starts, err := expandDay(q.Schedule, day, q.Game)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(q.Game.DurationMins) * time.Minute
	seen := make(map[int64]struct{}, len(starts))
	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		if !q.VenueNow.IsZero() && start.Before(q.VenueNow) {
			continue
		}
		if _, dup := seen[start.Unix()]; dup {
			continue
		}
		seen[start.Unix()] = struct{}{}

		end := start.Add(duration)
		window := BlockingWindow(start, end, q.Game.BufferMins)
		slot := Slot{StartAt: start, EndAt: end}
		best := -1
		for _, room := range rooms {
			d := Evaluate(RoomCheck{
				Room:        room,
				BufferMins:  q.Game.BufferMins,
				BookingType: q.BookingType,
				Players:     q.Players,
				Window:      window,
				Holds:       q.Holds,
				Bookings:    q.Bookings,
				Now:         q.Now,
			})
			if !d.Available {
				continue
			}
			slot.AvailableRooms++
			if slot.RoomID == "" {
				slot.RoomID = room.ID
			}
			if d.Remaining > best {
				best = d.Remaining
			}
		}
		if slot.AvailableRooms == 0 {
			continue
		}
		if q.BookingType == model.BookingPublic {
			capacity := best
			slot.RemainingCapacity = &capacity
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
