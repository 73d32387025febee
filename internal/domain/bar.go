package domain

import "time"

// Bar represents one trading day of OHLCV data for a single ticker.
type Bar struct {
	Date   time.Time // Trading day (midnight UTC)
	Ticker string    // Ticker symbol
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price
	Volume float64   // Trading volume
}

// SameDay reports whether t falls on the bar's calendar day (UTC).
func (b *Bar) SameDay(t time.Time) bool {
	by, bm, bd := b.Date.UTC().Date()
	ty, tm, td := t.UTC().Date()
	return by == ty && bm == tm && bd == td
}
