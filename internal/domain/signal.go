package domain

import "time"

// Signal represents one trade instruction extracted upstream (e.g. from a
// parsed newsletter email). It is read-only to the simulator.
type Signal struct {
	ID          int64     // Unique identifier for the signal (usually from DB)
	SourceID    string    // Identifier of the upstream message the signal came from
	Ticker      string    // Ticker symbol (e.g., "TSLA")
	SignalDate  time.Time // Calendar date the signal was generated
	EntryDate   time.Time // Calendar date on which the signal becomes actionable
	BuyPrice    float64   // Limit price for entry
	StopPrice   float64   // Loss bound (expected below BuyPrice)
	TargetPrice float64   // Gain bound (expected above BuyPrice)
}

// IsOrdered reports whether the usual price ordering stop < buy < target
// holds. The simulator runs mechanically either way; callers only use this
// to log a warning on malformed signals.
func (s *Signal) IsOrdered() bool {
	return s.StopPrice < s.BuyPrice && s.BuyPrice < s.TargetPrice
}
