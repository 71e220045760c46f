package main

import (
	"context"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// seedDemo loads one venue with two rooms open every day 10:00-22:00.
func seedDemo(ctx context.Context, store repository.Store) error {
	four := 4
	hours := make([]model.OpeningHours, 0, 7)
	for day := 0; day < 7; day++ {
		hours = append(hours, model.OpeningHours{DayOfWeek: day, Start: "10:00", End: "22:00"})
	}
	steps := []func() error{
		func() error {
			return store.SaveOrg(ctx, model.Org{ID: "demo", Name: "Demo Escape Rooms", ServiceFeeBps: 300, FeeLabel: "Service fee", Currency: "usd"})
		},
		func() error {
			return store.SaveGame(ctx, model.Game{
				ID:               "heist",
				OrgID:            "demo",
				Name:             "The Heist",
				DurationMins:     60,
				BufferMins:       15,
				SlotIntervalMins: 30,
				MinPlayers:       2,
				MaxPlayers:       8,
				AllowPrivate:     true,
				AllowPublic:      true,
				PricingTiers: []model.PricingTier{
					{MinPlayers: 2, MaxPlayers: &four, UnitAmountCents: 3500},
					{MinPlayers: 5, UnitAmountCents: 3000},
				},
			})
		},
		func() error {
			return store.SaveRoom(ctx, model.Room{ID: "heist-a", OrgID: "demo", GameID: "heist", Name: "Vault A", MaxPlayers: 8, Enabled: true})
		},
		func() error {
			return store.SaveRoom(ctx, model.Room{ID: "heist-b", OrgID: "demo", GameID: "heist", Name: "Vault B", MaxPlayers: 6, Enabled: true})
		},
		func() error {
			return store.SaveSchedule(ctx, model.Schedule{OrgID: "demo", GameID: "heist", OpeningHours: hours})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
