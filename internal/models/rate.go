package models

import "time"

// BaseCurrency is the currency all stored rates are expressed against.
// Its own rate is 1.0 by definition and is never stored as a row.
const BaseCurrency = "EUR"

// SourceECB identifies the ECB daily reference-rate feed.
const SourceECB = "ECB"

// RateRow is a single raw row from the rate feed. All fields are untrusted
// strings exactly as the provider sent them; validation happens at store time.
type RateRow struct {
	Currency   string // 3-letter currency code, e.g. "USD"
	TimePeriod string // observation date, "2006-01-02"
	Value      string // decimal rate, "1 BaseCurrency = Value Currency"
}

// RateObservation is a validated feed row ready to be persisted.
// Uniqueness key is (CurrencyCode, Date).
type RateObservation struct {
	CurrencyCode string    `db:"currency_code"`
	Date         time.Time `db:"date"`
	Rate         float64   `db:"rate"`
	Source       string    `db:"source"`
}
