package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

var (
	sessionStart = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC) // a Monday
	sessionEnd   = sessionStart.Add(time.Hour)
	startClock   = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingNotifier struct {
	calls atomic.Int32
	mu    sync.Mutex
	last  Notification
	err   error
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, note Notification) error {
	n.calls.Add(1)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = note
	return n.err
}

type fixture struct {
	store    *repository.MemoryStore
	clock    *fakeClock
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	maxFour := 4

	require.NoError(t, store.SaveOrg(ctx, model.Org{ID: "org-1", Name: "Lock & Key", ServiceFeeBps: 500, FeeLabel: "Booking fee", Currency: "usd"}))
	require.NoError(t, store.SaveGame(ctx, model.Game{
		ID:               "game-1",
		OrgID:            "org-1",
		Name:             "The Vault",
		DurationMins:     60,
		BufferMins:       15,
		SlotIntervalMins: 30,
		MinPlayers:       2,
		MaxPlayers:       8,
		AllowPrivate:     true,
		AllowPublic:      true,
		PricingTiers: []model.PricingTier{
			{MinPlayers: 1, MaxPlayers: &maxFour, UnitAmountCents: 2000},
			{MinPlayers: 5, UnitAmountCents: 1800},
		},
	}))
	require.NoError(t, store.SaveGame(ctx, model.Game{
		ID: "game-2", OrgID: "org-1", Name: "Private only",
		DurationMins: 60, SlotIntervalMins: 60, MinPlayers: 1, MaxPlayers: 4, AllowPrivate: true,
		PricingTiers: []model.PricingTier{{MinPlayers: 1, UnitAmountCents: 1000}},
	}))
	require.NoError(t, store.SaveRoom(ctx, model.Room{ID: "room-1", OrgID: "org-1", GameID: "game-1", Name: "Vault A", MaxPlayers: 6, Enabled: true}))
	require.NoError(t, store.SaveRoom(ctx, model.Room{ID: "room-off", OrgID: "org-1", GameID: "game-1", Name: "Vault B", MaxPlayers: 6}))
	require.NoError(t, store.SaveRoom(ctx, model.Room{ID: "room-x", OrgID: "org-1", GameID: "game-2", Name: "Study", MaxPlayers: 4, Enabled: true}))
	require.NoError(t, store.SaveSchedule(ctx, model.Schedule{
		OrgID: "org-1", GameID: "game-1",
		OpeningHours: []model.OpeningHours{{DayOfWeek: 1, Start: "10:00", End: "13:00"}},
	}))

	clock := &fakeClock{t: startClock}
	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		clock:    clock,
		notifier: notifier,
		svc:      NewService(store, notifier, nil, clock.Now),
	}
}

func holdInput(bookingType model.BookingType, players int) CreateHoldInput {
	return CreateHoldInput{
		OrgID:       "org-1",
		GameID:      "game-1",
		RoomID:      "room-1",
		BookingType: bookingType,
		StartAt:     sessionStart,
		EndAt:       sessionEnd,
		Players:     players,
		Customer:    model.Customer{Name: "Grace", Email: "grace@example.com"},
	}
}

// failingStore makes chosen writes fail.
type failingStore struct {
	*repository.MemoryStore
	insertBookingErr error
}

func (s *failingStore) InsertBooking(ctx context.Context, b model.Booking) error {
	if s.insertBookingErr != nil {
		return s.insertBookingErr
	}
	return s.MemoryStore.InsertBooking(ctx, b)
}

var errBoom = errors.New("boom")
