package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/model"
)

func intPtr(v int) *int { return &v }

func tieredGame() model.Game {
	return model.Game{
		ID:         "game-1",
		MinPlayers: 2,
		MaxPlayers: 8,
		PricingTiers: []model.PricingTier{
			{MinPlayers: 2, MaxPlayers: intPtr(4), UnitAmountCents: 2000},
			{MinPlayers: 5, MaxPlayers: intPtr(8), UnitAmountCents: 1800},
		},
	}
}

func TestCalculateTierBoundaries(t *testing.T) {
	org := &model.Org{ID: "org-1", ServiceFeeBps: 0, Currency: "usd"}

	q, err := Calculate(org, tieredGame(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), q.UnitAmountCents)
	assert.Equal(t, int64(8000), q.SubtotalCents)

	q, err = Calculate(org, tieredGame(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), q.UnitAmountCents)
	assert.Equal(t, int64(9000), q.TotalCents)

	_, err = Calculate(org, tieredGame(), 9)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodePricingNotConfigured))
	assert.Contains(t, err.Error(), "2-8 players")
}

func TestCalculatePrefersMostSpecificTier(t *testing.T) {
	game := model.Game{PricingTiers: []model.PricingTier{
		{MinPlayers: 1, UnitAmountCents: 3000},
		{MinPlayers: 6, UnitAmountCents: 2500},
	}}

	q, err := Calculate(nil, game, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), q.UnitAmountCents)

	q, err = Calculate(nil, game, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), q.UnitAmountCents)
	assert.Equal(t, model.DefaultCurrency, q.Currency)
	assert.Zero(t, q.FeeCents)
}

func TestCalculateServiceFee(t *testing.T) {
	org := &model.Org{ServiceFeeBps: 350, FeeLabel: "Booking fee", Currency: "eur"}
	game := model.Game{PricingTiers: []model.PricingTier{{MinPlayers: 1, UnitAmountCents: 1999}}}

	q, err := Calculate(org, game, 3)
	require.NoError(t, err)
	// 5997 * 3.5% = 209.895
	assert.Equal(t, int64(5997), q.SubtotalCents)
	assert.Equal(t, int64(210), q.FeeCents)
	assert.Equal(t, int64(6207), q.TotalCents)
	assert.Equal(t, "Booking fee", q.FeeLabel)
	assert.Equal(t, "eur", q.Currency)
}

func TestCalculateRejectsBadData(t *testing.T) {
	_, err := Calculate(nil, model.Game{}, 2)
	assert.True(t, apperror.Is(err, apperror.CodePricingNotConfigured))

	negative := model.Game{PricingTiers: []model.PricingTier{{MinPlayers: 1, UnitAmountCents: -100}}}
	_, err = Calculate(nil, negative, 2)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidPricingData))

	huge := model.Game{PricingTiers: []model.PricingTier{{MinPlayers: 1, UnitAmountCents: 50_000_000}}}
	_, err = Calculate(nil, huge, 2)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidPricingData))

	nearCeiling := model.Game{PricingTiers: []model.PricingTier{{MinPlayers: 1, UnitAmountCents: 99_999_000}}}
	_, err = Calculate(&model.Org{ServiceFeeBps: 1000}, nearCeiling, 1)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidTotal))
}

func TestFee(t *testing.T) {
	assert.Equal(t, int64(0), Fee(1000, 0))
	assert.Equal(t, int64(50), Fee(1000, 500))
	assert.Equal(t, int64(1), Fee(50, 100)) // 0.5 rounds up
	assert.Equal(t, int64(0), Fee(49, 100)) // 0.49 rounds down
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "123.45 USD", FormatCents(12345, "usd"))
	assert.Equal(t, "0.05 EUR", FormatCents(5, "eur"))
	assert.Equal(t, "-1.00 USD", FormatCents(-100, ""))
}
