package domain

import "time"

// Statistics holds the per-ticker performance metrics computed from one
// simulated trade and its price bar window.
type Statistics struct {
	Ticker           string
	TotalReturnPct   float64 // Equity return over the window, percent
	WinRatePct       float64 // Fraction of entered trades with positive return, percent
	MaxDrawdownPct   float64 // Deepest peak-to-trough equity decline, percent (reported negative)
	SharpeRatio      float64 // Annualized mean/stddev of daily equity returns
	Trades           int     // Number of entered trades (0 or 1 per signal)
	ExposureTimePct  float64 // Fraction of bars with an open position, percent
	BuyHoldReturnPct float64 // Close at window end vs close at window start, percent
	StartingCapital  float64
	FinalEquity      float64
	WindowStart      time.Time
	WindowEnd        time.Time
	WindowDays       int
}

// PortfolioSummary aggregates per-ticker statistics across one batch.
type PortfolioSummary struct {
	Batch            int64
	WeightedReturn   float64 // Trade-count-weighted average return, percent
	TotalTrades      int
	TickersWithData  int // Tickers that produced a result row
	TickersAttempted int
	SuccessRatio     float64 // TickersWithData / TickersAttempted, 0 when none attempted
}

// BacktestResult is one persisted row: the trade outcome plus the per-ticker
// statistics, tagged with the batch the run belonged to.
type BacktestResult struct {
	ID      int64
	Batch   int64
	Outcome *TradeOutcome
	Stats   *Statistics
}
