package domain

import "time"

// ExitReason indicates how a simulated trade ended.
type ExitReason string

const (
	// ExitStopLoss means the bar's low reached the stop level.
	ExitStopLoss ExitReason = "STOP_LOSS"
	// ExitTargetHit means the bar's high reached the target level.
	ExitTargetHit ExitReason = "TARGET_HIT"
	// ExitNoEntry means the limit condition never filled (or the entry date
	// never matched a bar).
	ExitNoEntry ExitReason = "NO_ENTRY"
	// ExitNoExit means the bar window ran out while the position was open.
	ExitNoExit ExitReason = "NO_EXIT"
)

// TradeOutcome is the immutable record produced by one simulation run for
// one ticker. Fields echoing the signal are copied verbatim.
type TradeOutcome struct {
	Ticker      string
	SignalDate  time.Time
	EntryDate   time.Time
	BuyPrice    float64
	StopPrice   float64
	TargetPrice float64

	SignalTriggeredDate time.Time // Date the entry date matched a price bar
	MarketPriceAtSignal float64   // That bar's close
	ActualEntryPrice    float64   // Fill price if entered, 0 otherwise

	ExitDate   time.Time
	ExitPrice  float64
	ExitReason ExitReason

	TradeDurationDays int     // Whole days between entry and exit bars, 0 if never entered
	TradeReturnPct    float64 // Signed percent return of the trade, 0 if never entered
}

// Entered reports whether the simulated limit order filled.
func (o *TradeOutcome) Entered() bool {
	return o.ActualEntryPrice > 0
}
