package repository

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-booking/internal/model"
)

var base = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, s Store) {
    t.Helper()
    ctx := context.Background()
    maxFour := 4
    require.NoError(t, s.SaveOrg(ctx, model.Org{ID: "org-1", Name: "Lock & Key", ServiceFeeBps: 250, FeeLabel: "Service fee", Currency: "usd", Timezone: "America/New_York"}))
    require.NoError(t, s.SaveOrg(ctx, model.Org{ID: "org-2", Name: "Other venue"}))
    require.NoError(t, s.SaveGame(ctx, model.Game{
        ID: "game-1", OrgID: "org-1", Name: "The Vault",
        DurationMins: 60, BufferMins: 15, SlotIntervalMins: 30,
        MinPlayers: 2, MaxPlayers: 8, AllowPrivate: true, AllowPublic: true,
        PricingTiers: []model.PricingTier{
            {MinPlayers: 2, MaxPlayers: &maxFour, UnitAmountCents: 2000},
            {MinPlayers: 5, UnitAmountCents: 1800},
        },
    }))
    require.NoError(t, s.SaveRoom(ctx, model.Room{ID: "room-b", OrgID: "org-1", GameID: "game-1", Name: "B", MaxPlayers: 6, Enabled: true}))
    require.NoError(t, s.SaveRoom(ctx, model.Room{ID: "room-a", OrgID: "org-1", GameID: "game-1", Name: "A", MaxPlayers: 8, Enabled: true}))
    require.NoError(t, s.SaveSchedule(ctx, model.Schedule{
        OrgID: "org-1", GameID: "game-1",
        OpeningHours: []model.OpeningHours{{DayOfWeek: 1, Start: "10:00", End: "22:00"}},
    }))
}

func newHold(id, roomID string, start time.Time, status model.HoldStatus) model.Hold {
    created := base.Add(-time.Hour)
    return model.Hold{
        ID:            id,
        OrgID:         "org-1",
        GameID:        "game-1",
        RoomID:        roomID,
        BookingType:   model.BookingPrivate,
        StartAt:       start,
        EndAt:         start.Add(time.Hour),
        Players:       4,
        Status:        status,
        Customer:      model.Customer{Name: "Ada", Email: "ada@example.com"},
        Currency:      "usd",
        SubtotalCents: 8000,
        FeeCents:      200,
        TotalCents:    8200,
        CreatedAt:     created,
        ExpiresAt:     created.Add(model.HoldTTL),
        UpdatedAt:     created,
    }
}

func newBooking(id, holdID string, start time.Time) model.Booking {
    return model.Booking{
        ID:            id,
        OrgID:         "org-1",
        GameID:        "game-1",
        RoomID:        "room-a",
        HoldID:        holdID,
        BookingType:   model.BookingPrivate,
        StartAt:       start,
        EndAt:         start.Add(time.Hour),
        Players:       4,
        Status:        model.BookingConfirmed,
        Customer:      model.Customer{Name: "Ada", Email: "ada@example.com"},
        Currency:      "usd",
        SubtotalCents: 8000,
        FeeCents:      200,
        TotalCents:    8200,
        PaymentStatus: model.PaymentUnpaid,
        CreatedAt:     base,
    }
}

// runStoreContract checks the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
    ctx := context.Background()

    t.Run("reads are scoped by org", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)

        org, err := s.GetOrg(ctx, "org-1")
        require.NoError(t, err)
        assert.Equal(t, 250, org.ServiceFeeBps)
        assert.Equal(t, "America/New_York", org.Timezone)

        game, err := s.GetGame(ctx, "org-1", "game-1")
        require.NoError(t, err)
        require.Len(t, game.PricingTiers, 2)
        require.NotNil(t, game.PricingTiers[0].MaxPlayers)
        assert.Equal(t, 4, *game.PricingTiers[0].MaxPlayers)
        assert.Nil(t, game.PricingTiers[1].MaxPlayers)

        _, err = s.GetGame(ctx, "org-2", "game-1")
        assert.ErrorIs(t, err, ErrNotFound)
        _, err = s.GetRoom(ctx, "org-2", "room-a")
        assert.ErrorIs(t, err, ErrNotFound)
        _, err = s.GetOrg(ctx, "nope")
        assert.ErrorIs(t, err, ErrNotFound)

        rooms, err := s.ListRooms(ctx, "org-1", "game-1")
        require.NoError(t, err)
        require.Len(t, rooms, 2)
        assert.Equal(t, "room-a", rooms[0].ID)

        sc, err := s.GetSchedule(ctx, "org-1", "game-1")
        require.NoError(t, err)
        assert.Equal(t, []model.OpeningHours{{DayOfWeek: 1, Start: "10:00", End: "22:00"}}, sc.OpeningHours)
        _, err = s.GetSchedule(ctx, "org-2", "game-1")
        assert.ErrorIs(t, err, ErrNotFound)
    })

    t.Run("insert hold requires the observed room version", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)

        room, err := s.GetRoom(ctx, "org-1", "room-a")
        require.NoError(t, err)

        require.NoError(t, s.InsertHold(ctx, newHold("h-1", "room-a", base, model.HoldActive), room.Version))
        err = s.InsertHold(ctx, newHold("h-2", "room-a", base, model.HoldActive), room.Version)
        assert.ErrorIs(t, err, ErrConflict)

        _, err = s.GetHold(ctx, "org-1", "h-2")
        assert.ErrorIs(t, err, ErrNotFound, "a losing insert writes nothing")

        bumped, err := s.GetRoom(ctx, "org-1", "room-a")
        require.NoError(t, err)
        assert.Equal(t, room.Version+1, bumped.Version)

        other, err := s.GetRoom(ctx, "org-1", "room-b")
        require.NoError(t, err)
        require.NoError(t, s.InsertHold(ctx, newHold("h-3", "room-b", base, model.HoldActive), other.Version))

        // room edits keep the version
        room.Name = "Renamed"
        require.NoError(t, s.SaveRoom(ctx, room))
        renamed, err := s.GetRoom(ctx, "org-1", "room-a")
        require.NoError(t, err)
        assert.Equal(t, bumped.Version, renamed.Version)
        assert.Equal(t, "Renamed", renamed.Name)
    })

    t.Run("active holds are filtered by window and status", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)

        insert := func(h model.Hold) {
            room, err := s.GetRoom(ctx, "org-1", h.RoomID)
            require.NoError(t, err)
            require.NoError(t, s.InsertHold(ctx, h, room.Version))
        }
        insert(newHold("h-early", "room-a", base, model.HoldActive))
        insert(newHold("h-late", "room-a", base.Add(3*time.Hour), model.HoldActive))
        insert(newHold("h-done", "room-b", base, model.HoldConfirmed))

        holds, err := s.ListActiveHolds(ctx, "org-1", "game-1", base.Add(-time.Hour), base.Add(2*time.Hour))
        require.NoError(t, err)
        require.Len(t, holds, 1)
        got := holds[0]
        assert.Equal(t, "h-early", got.ID)
        assert.Equal(t, model.Customer{Name: "Ada", Email: "ada@example.com"}, got.Customer)
        assert.True(t, got.StartAt.Equal(base))
        assert.Nil(t, got.ConfirmedAt)

        // touching windows do not intersect
        holds, err = s.ListActiveHolds(ctx, "org-1", "game-1", base.Add(time.Hour), base.Add(2*time.Hour))
        require.NoError(t, err)
        assert.Empty(t, holds)
    })

    t.Run("transition hold is conditional", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)
        room, err := s.GetRoom(ctx, "org-1", "room-a")
        require.NoError(t, err)
        require.NoError(t, s.InsertHold(ctx, newHold("h-1", "room-a", base, model.HoldActive), room.Version))

        ok, err := s.TransitionHold(ctx, "org-1", "h-1", []model.HoldStatus{model.HoldExpired}, model.HoldCanceled, "", base)
        require.NoError(t, err)
        assert.False(t, ok)

        ok, err = s.TransitionHold(ctx, "org-2", "h-1", []model.HoldStatus{model.HoldActive}, model.HoldCanceled, "", base)
        require.NoError(t, err)
        assert.False(t, ok, "other orgs cannot touch the hold")

        ok, err = s.TransitionHold(ctx, "org-1", "h-1", []model.HoldStatus{model.HoldActive, model.HoldExpired}, model.HoldConfirmed, "b-1", base)
        require.NoError(t, err)
        assert.True(t, ok)

        h, err := s.GetHold(ctx, "org-1", "h-1")
        require.NoError(t, err)
        assert.Equal(t, model.HoldConfirmed, h.Status)
        assert.Equal(t, "b-1", h.BookingID)
        require.NotNil(t, h.ConfirmedAt)
        assert.True(t, h.ConfirmedAt.Equal(base))
    })

    t.Run("expire holds flips only lapsed active holds", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)

        lapsed := newHold("h-lapsed", "room-a", base, model.HoldActive)
        fresh := newHold("h-fresh", "room-b", base, model.HoldActive)
        fresh.ExpiresAt = base.Add(5 * time.Minute)
        for _, h := range []model.Hold{lapsed, fresh} {
            room, err := s.GetRoom(ctx, "org-1", h.RoomID)
            require.NoError(t, err)
            require.NoError(t, s.InsertHold(ctx, h, room.Version))
        }

        n, err := s.ExpireHolds(ctx, base)
        require.NoError(t, err)
        assert.Equal(t, int64(1), n)

        h, err := s.GetHold(ctx, "org-1", "h-lapsed")
        require.NoError(t, err)
        assert.Equal(t, model.HoldExpired, h.Status)
        h, err = s.GetHold(ctx, "org-1", "h-fresh")
        require.NoError(t, err)
        assert.Equal(t, model.HoldActive, h.Status)

        n, err = s.ExpireHolds(ctx, base)
        require.NoError(t, err)
        assert.Zero(t, n)
    })

    t.Run("bookings are unique by id and hold", func(t *testing.T) {
        s := newStore(t)
        seed(t, s)
        for _, id := range []string{"h-1", "h-2"} {
            room, err := s.GetRoom(ctx, "org-1", "room-a")
            require.NoError(t, err)
            require.NoError(t, s.InsertHold(ctx, newHold(id, "room-a", base, model.HoldActive), room.Version))
        }

        require.NoError(t, s.InsertBooking(ctx, newBooking("b-1", "h-1", base)))
        assert.ErrorIs(t, s.InsertBooking(ctx, newBooking("b-1", "h-2", base)), ErrConflict)
        assert.ErrorIs(t, s.InsertBooking(ctx, newBooking("b-2", "h-1", base)), ErrConflict)

        b, err := s.GetBookingByHold(ctx, "org-1", "h-1")
        require.NoError(t, err)
        assert.Equal(t, "b-1", b.ID)
        assert.Equal(t, model.PaymentUnpaid, b.PaymentStatus)

        _, err = s.GetBooking(ctx, "org-2", "b-1")
        assert.ErrorIs(t, err, ErrNotFound)

        list, err := s.ListConfirmedBookings(ctx, "org-1", "game-1", base, base.Add(24*time.Hour))
        require.NoError(t, err)
        require.Len(t, list, 1)
        assert.Equal(t, "h-1", list[0].HoldID)
    })
}
