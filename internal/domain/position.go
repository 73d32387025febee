package domain

import "time"

// Position is the transient long position owned by a single simulation run.
// Stop and target are copied from the triggering signal at fill time and do
// not change for the life of the position.
type Position struct {
	Ticker      string    // Ticker symbol
	EntryPrice  float64   // Fill price (entry bar's close)
	EntryDate   time.Time // Entry bar's date
	StopPrice   float64   // Stop-loss level, fixed at fill time
	TargetPrice float64   // Target level, fixed at fill time
	Open        bool      // Whether the position is currently held
}
