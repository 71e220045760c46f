package model

import "time"

// DefaultCurrency is used for orgs that have not configured a currency.
const DefaultCurrency = "usd"

// Org represents a venue operator (tenant).  Every game, room, schedule,
// hold and booking belongs to exactly one org and all reads and writes
// are scoped by the org ID.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – venue name shown to customers.
//  ServiceFeeBps – service fee in basis points added on top of the subtotal.
//  FeeLabel      – display label for the fee (e.g. "Booking fee").
//  Currency      – ISO currency code in lower case; empty means DefaultCurrency.
//  Timezone      – IANA zone of the venue; schedules are wall-clock times
//                  in this zone.  Empty means UTC.
type Org struct {
    ID            string `db:"id" json:"id"`
    Name          string `db:"name" json:"name"`
    ServiceFeeBps int    `db:"service_fee_bps" json:"service_fee_bps"`
    FeeLabel      string `db:"fee_label" json:"fee_label"`
    Currency      string `db:"currency" json:"currency"`
    Timezone      string `db:"timezone" json:"timezone,omitempty"`
}

// CurrencyOrDefault returns the org currency, falling back to DefaultCurrency
// for nil orgs and orgs without a configured currency.
func (o *Org) CurrencyOrDefault() string {
    if o == nil || o.Currency == "" {
        return DefaultCurrency
    }
    return o.Currency
}

// Location resolves the org time zone.
func (o *Org) Location() (*time.Location, error) {
    if o == nil || o.Timezone == "" {
        return time.UTC, nil
    }
    return time.LoadLocation(o.Timezone)
}
