// Package pricing turns tiered per-person prices and the organization's
// service fee into a quote.  Everything here is pure arithmetic on
// integer cents.
package pricing

import (
	"fmt"
	"strings"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/model"
)

// MaxCents is the sanity ceiling for any computed amount.
const MaxCents int64 = 99_999_999

// Quote is the price breakdown for one booking.
type Quote struct {
	Players         int    `json:"players"`
	UnitAmountCents int64  `json:"unit_amount_cents"`
	SubtotalCents   int64  `json:"subtotal_cents"`
	FeeCents        int64  `json:"fee_cents"`
	TotalCents      int64  `json:"total_cents"`
	ServiceFeeBps   int    `json:"service_fee_bps"`
	FeeLabel        string `json:"fee_label,omitempty"`
	Currency        string `json:"currency"`
}

// Calculate prices a party of players for game.  org may be nil, in which
// case no service fee applies and the default currency is used.
func Calculate(org *model.Org, game model.Game, players int) (Quote, error) {
	tier, ok := SelectTier(game.PricingTiers, players)
	if !ok {
		return Quote{}, apperror.New(apperror.CodePricingNotConfigured, notConfiguredMessage(game.PricingTiers, players))
	}
	if tier.UnitAmountCents < 0 || tier.UnitAmountCents > MaxCents {
		return Quote{}, apperror.Newf(apperror.CodeInvalidPricingData, "unit amount %d out of range", tier.UnitAmountCents)
	}
	if players <= 0 {
		return Quote{}, apperror.Newf(apperror.CodeInvalidPricingData, "player count %d out of range", players)
	}

	subtotal := tier.UnitAmountCents * int64(players)
	if subtotal > MaxCents {
		return Quote{}, apperror.Newf(apperror.CodeInvalidPricingData, "subtotal %d exceeds %d", subtotal, MaxCents)
	}

	q := Quote{
		Players:         players,
		UnitAmountCents: tier.UnitAmountCents,
		SubtotalCents:   subtotal,
		Currency:        org.CurrencyOrDefault(),
	}
	if org != nil {
		q.ServiceFeeBps = org.ServiceFeeBps
		q.FeeLabel = org.FeeLabel
	}
	q.FeeCents = Fee(subtotal, q.ServiceFeeBps)
	q.TotalCents = subtotal + q.FeeCents
	if q.FeeCents < 0 || q.TotalCents < 0 || q.TotalCents > MaxCents {
		return Quote{}, apperror.Newf(apperror.CodeInvalidTotal, "total %d (fee %d) out of range", q.TotalCents, q.FeeCents)
	}
	return q, nil
}

// Fee is subtotal*bps/10000 rounded half away from zero.
func Fee(subtotal int64, bps int) int64 {
	n := subtotal * int64(bps)
	if n < 0 {
		return -((-n + 5000) / 10000)
	}
	return (n + 5000) / 10000
}

// SelectTier picks the matching tier with the highest MinPlayers.  Bounds
// are inclusive; a nil MaxPlayers is open-ended.
func SelectTier(tiers []model.PricingTier, players int) (model.PricingTier, bool) {
	var (
		best  model.PricingTier
		found bool
	)
	for _, t := range tiers {
		if players < t.MinPlayers {
			continue
		}
		if t.MaxPlayers != nil && players > *t.MaxPlayers {
			continue
		}
		if !found || t.MinPlayers > best.MinPlayers {
			best, found = t, true
		}
	}
	return best, found
}

func notConfiguredMessage(tiers []model.PricingTier, players int) string {
	if len(tiers) == 0 {
		return "pricing is not configured for this game"
	}
	low, high, open := tiers[0].MinPlayers, 0, false
	for _, t := range tiers {
		low = min(low, t.MinPlayers)
		if t.MaxPlayers == nil {
			open = true
		} else {
			high = max(high, *t.MaxPlayers)
		}
	}
	if open {
		return fmt.Sprintf("no price for %d players; pricing supports %d+ players", players, low)
	}
	return fmt.Sprintf("no price for %d players; pricing supports %d-%d players", players, low, high)
}

// FormatCents renders an amount for people, e.g. "123.45 USD".
func FormatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, strings.ToUpper(currency))
}
