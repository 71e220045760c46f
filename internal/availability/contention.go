package availability

import (
	"time"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/model"
)

// RoomCheck is the input of the per-room contention rule.  Window is the
// blocking window of the requested session (buffer already applied).
// Holds and Bookings may contain entries for other rooms; they are
// filtered here.
type RoomCheck struct {
	Room        model.Room
	BufferMins  int
	BookingType model.BookingType
	Players     int
	Window      Window
	Holds       []model.Hold
	Bookings    []model.Booking
	Now         time.Time
}

// Decision is the outcome of the contention rule.  Remaining is the room
// capacity left by overlapping public entries; it is 0 whenever a private
// entry overlaps.
type Decision struct {
	Available bool
	Code      string
	Remaining int
}

// occupant is the part of a hold or booking the rule looks at.
type occupant struct {
	bookingType model.BookingType
	players     int
}

// Evaluate applies the contention rule for one room: private requests
// need an empty window, public requests need no private occupant and
// enough spare capacity.  Holds that have lapsed at Now are ignored
// (lazy expiry); a zero Now ignores none.
func Evaluate(in RoomCheck) Decision {
	overlapping := collectOverlapping(in)

	used := 0
	private := false
	for _, o := range overlapping {
		if o.bookingType == model.BookingPrivate {
			private = true
		}
		used += o.players
	}

	if in.BookingType == model.BookingPrivate {
		if len(overlapping) > 0 {
			return Decision{Code: apperror.CodeSlotUnavailable, Remaining: remaining(in.Room.MaxPlayers, used, private)}
		}
		return Decision{Available: true, Remaining: in.Room.MaxPlayers}
	}

	if private {
		return Decision{Code: apperror.CodeSlotUnavailable}
	}
	left := in.Room.MaxPlayers - used
	if used+in.Players > in.Room.MaxPlayers {
		return Decision{Code: apperror.CodeSlotCapacityExceeded, Remaining: max(left, 0)}
	}
	return Decision{Available: true, Remaining: left}
}

func remaining(capacity, used int, private bool) int {
	if private || used >= capacity {
		return 0
	}
	return capacity - used
}

func collectOverlapping(in RoomCheck) []occupant {
	var out []occupant
	for _, h := range in.Holds {
		if h.RoomID != in.Room.ID {
			continue
		}
		if h.EffectiveStatus(in.Now) != model.HoldActive {
			continue
		}
		if !BlockingWindow(h.StartAt, h.EndAt, in.BufferMins).Overlaps(in.Window) {
			continue
		}
		out = append(out, occupant{bookingType: h.BookingType, players: h.Players})
	}
	for _, b := range in.Bookings {
		if b.RoomID != in.Room.ID || b.Status != model.BookingConfirmed {
			continue
		}
		if !BlockingWindow(b.StartAt, b.EndAt, in.BufferMins).Overlaps(in.Window) {
			continue
		}
		out = append(out, occupant{bookingType: b.BookingType, players: b.Players})
	}
	return out
}
