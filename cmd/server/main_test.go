package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "sweep", "migrate", "token"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "true", serve.Flags().Lookup("migrate").DefValue)
	assert.Equal(t, "false", serve.Flags().Lookup("memory").DefValue)
}

func TestSeedDemoIsBookable(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, seedDemo(ctx, store))

	now := func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }
	svc := booking.NewService(store, nil, zap.NewNop(), now)
	slots, err := svc.ListSlots(ctx, booking.SlotsInput{
		OrgID:       "demo",
		GameID:      "heist",
		Date:        "2026-10-16",
		BookingType: model.BookingPrivate,
		Players:     4,
	})
	require.NoError(t, err)
	// 10:00 to 21:00 every 30 minutes
	assert.Len(t, slots, 23)
	assert.Equal(t, 2, slots[0].AvailableRooms)
}
