package repository

import (
    "context"
    "slices"
    "strings"
    "sync"
    "time"

    "github.com/samber/lo"

    "github.com/iliyamo/venue-booking/internal/model"
)

// MemoryStore is an in-process Store.  A single mutex serializes all
// access, so the conditional writes behave exactly like their SQL
// counterparts: the version check and the insert happen under one lock.
type MemoryStore struct {
    mu       sync.Mutex
    orgs     map[string]model.Org
    games    map[string]model.Game
    rooms    map[string]model.Room
    sched    map[string]model.Schedule
    holds    map[string]model.Hold
    bookings map[string]model.Booking
    byHold   map[string]string // org/hold -> booking key
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{
        orgs:     map[string]model.Org{},
        games:    map[string]model.Game{},
        rooms:    map[string]model.Room{},
        sched:    map[string]model.Schedule{},
        holds:    map[string]model.Hold{},
        bookings: map[string]model.Booking{},
        byHold:   map[string]string{},
    }
}

var _ Store = (*MemoryStore)(nil)

func key(orgID, id string) string { return orgID + "/" + id }

func (s *MemoryStore) GetOrg(_ context.Context, orgID string) (model.Org, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    o, ok := s.orgs[orgID]
    if !ok {
        return model.Org{}, ErrNotFound
    }
    return o, nil
}

func (s *MemoryStore) GetGame(_ context.Context, orgID, gameID string) (model.Game, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.games[key(orgID, gameID)]
    if !ok {
        return model.Game{}, ErrNotFound
    }
    g.PricingTiers = slices.Clone(g.PricingTiers)
    return g, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, orgID, roomID string) (model.Room, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.rooms[key(orgID, roomID)]
    if !ok {
        return model.Room{}, ErrNotFound
    }
    return r, nil
}

func (s *MemoryStore) ListRooms(_ context.Context, orgID, gameID string) ([]model.Room, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    rooms := lo.Filter(lo.Values(s.rooms), func(r model.Room, _ int) bool {
        return r.OrgID == orgID && r.GameID == gameID
    })
    slices.SortFunc(rooms, func(a, b model.Room) int { return strings.Compare(a.ID, b.ID) })
    return rooms, nil
}

func (s *MemoryStore) GetSchedule(_ context.Context, orgID, gameID string) (model.Schedule, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sc, ok := s.sched[key(orgID, gameID)]
    if !ok {
        return model.Schedule{}, ErrNotFound
    }
    sc.OpeningHours = slices.Clone(sc.OpeningHours)
    return sc, nil
}

func (s *MemoryStore) GetHold(_ context.Context, orgID, holdID string) (model.Hold, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    h, ok := s.holds[key(orgID, holdID)]
    if !ok {
        return model.Hold{}, ErrNotFound
    }
    return h, nil
}

func (s *MemoryStore) ListActiveHolds(_ context.Context, orgID, gameID string, from, to time.Time) ([]model.Hold, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    holds := lo.Filter(lo.Values(s.holds), func(h model.Hold, _ int) bool {
        return h.OrgID == orgID && h.GameID == gameID && h.Status == model.HoldActive &&
            h.StartAt.Before(to) && from.Before(h.EndAt)
    })
    slices.SortFunc(holds, func(a, b model.Hold) int {
        if c := a.StartAt.Compare(b.StartAt); c != 0 {
            return c
        }
        return strings.Compare(a.ID, b.ID)
    })
    return holds, nil
}

func (s *MemoryStore) InsertHold(_ context.Context, hold model.Hold, expectedRoomVersion uint64) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    rk := key(hold.OrgID, hold.RoomID)
    room, ok := s.rooms[rk]
    if !ok || room.Version != expectedRoomVersion {
        return ErrConflict
    }
    hk := key(hold.OrgID, hold.ID)
    if _, dup := s.holds[hk]; dup {
        return ErrConflict
    }
    room.Version++
    s.rooms[rk] = room
    s.holds[hk] = hold
    return nil
}

func (s *MemoryStore) TransitionHold(_ context.Context, orgID, holdID string, from []model.HoldStatus, to model.HoldStatus, bookingID string, at time.Time) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    hk := key(orgID, holdID)
    h, ok := s.holds[hk]
    if !ok || !slices.Contains(from, h.Status) {
        return false, nil
    }
    h.Status = to
    if bookingID != "" {
        h.BookingID = bookingID
    }
    if !at.IsZero() {
        h.UpdatedAt = at
        if to == model.HoldConfirmed {
            t := at
            h.ConfirmedAt = &t
        }
    }
    s.holds[hk] = h
    return true, nil
}

func (s *MemoryStore) ExpireHolds(_ context.Context, now time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for k, h := range s.holds {
        if !h.Lapsed(now) {
            continue
        }
        h.Status = model.HoldExpired
        h.UpdatedAt = now
        s.holds[k] = h
        n++
    }
    return n, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, orgID, bookingID string) (model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[key(orgID, bookingID)]
    if !ok {
        return model.Booking{}, ErrNotFound
    }
    return b, nil
}

func (s *MemoryStore) GetBookingByHold(_ context.Context, orgID, holdID string) (model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    bk, ok := s.byHold[key(orgID, holdID)]
    if !ok {
        return model.Booking{}, ErrNotFound
    }
    return s.bookings[bk], nil
}

func (s *MemoryStore) ListConfirmedBookings(_ context.Context, orgID, gameID string, from, to time.Time) ([]model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    bookings := lo.Filter(lo.Values(s.bookings), func(b model.Booking, _ int) bool {
        return b.OrgID == orgID && b.GameID == gameID && b.Status == model.BookingConfirmed &&
            b.StartAt.Before(to) && from.Before(b.EndAt)
    })
    slices.SortFunc(bookings, func(a, b model.Booking) int {
        if c := a.StartAt.Compare(b.StartAt); c != 0 {
            return c
        }
        return strings.Compare(a.ID, b.ID)
    })
    return bookings, nil
}

func (s *MemoryStore) InsertBooking(_ context.Context, booking model.Booking) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    bk := key(booking.OrgID, booking.ID)
    hk := key(booking.OrgID, booking.HoldID)
    if _, dup := s.bookings[bk]; dup {
        return ErrConflict
    }
    if _, dup := s.byHold[hk]; dup {
        return ErrConflict
    }
    s.bookings[bk] = booking
    s.byHold[hk] = bk
    return nil
}

func (s *MemoryStore) SaveOrg(_ context.Context, org model.Org) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.orgs[org.ID] = org
    return nil
}

func (s *MemoryStore) SaveGame(_ context.Context, game model.Game) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    game.PricingTiers = slices.Clone(game.PricingTiers)
    s.games[key(game.OrgID, game.ID)] = game
    return nil
}

// SaveRoom upserts a room.  The stored version is preserved so that an
// edit never resets the contention counter.
func (s *MemoryStore) SaveRoom(_ context.Context, room model.Room) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    rk := key(room.OrgID, room.ID)
    if prev, ok := s.rooms[rk]; ok {
        room.Version = prev.Version
    }
    s.rooms[rk] = room
    return nil
}

func (s *MemoryStore) SaveSchedule(_ context.Context, schedule model.Schedule) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    schedule.OpeningHours = slices.Clone(schedule.OpeningHours)
    s.sched[key(schedule.OrgID, schedule.GameID)] = schedule
    return nil
}
