package analytics

import (
	"testing"
	"time"

	"stoxxBacktester/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func bar(date string, close float64) *domain.Bar {
	return &domain.Bar{Date: day(date), Ticker: "X", Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func noCommission() Config {
	return Config{StartingCapital: 100000, PositionSize: 10, Commission: 0}
}

func TestAnalyze_TargetHitTrade(t *testing.T) {
	outcome := &domain.TradeOutcome{
		Ticker:              "X",
		SignalTriggeredDate: day("2024-01-10"),
		ActualEntryPrice:    99,
		ExitDate:            day("2024-01-12"),
		ExitPrice:           120,
		ExitReason:          domain.ExitTargetHit,
		TradeReturnPct:      (120.0 - 99.0) / 99.0 * 100,
	}
	bars := []*domain.Bar{
		bar("2024-01-09", 98), // lead bar before the trade
		bar("2024-01-10", 99),
		bar("2024-01-11", 100),
		bar("2024-01-12", 121),
	}

	stats := Analyze(outcome, bars, noCommission())

	// Equity: flat 100000, entry bar 100000, then 100010, then exit at 120:
	// cash 99010 + 10*120 = 100210.
	assert.InDelta(t, 100210.0, stats.FinalEquity, 1e-9)
	assert.InDelta(t, 0.21, stats.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, stats.Trades)
	assert.Equal(t, 100.0, stats.WinRatePct)
	assert.InDelta(t, 75.0, stats.ExposureTimePct, 1e-9) // 3 of 4 bars held
	assert.InDelta(t, (121.0-98.0)/98.0*100, stats.BuyHoldReturnPct, 1e-9)
	assert.Equal(t, day("2024-01-09"), stats.WindowStart)
	assert.Equal(t, day("2024-01-12"), stats.WindowEnd)
	assert.Equal(t, 3, stats.WindowDays)
	assert.Equal(t, 0.0, stats.MaxDrawdownPct) // equity never declined
}

func TestAnalyze_StopLossDrawdown(t *testing.T) {
	outcome := &domain.TradeOutcome{
		Ticker:              "X",
		SignalTriggeredDate: day("2024-01-10"),
		ActualEntryPrice:    99,
		ExitDate:            day("2024-01-11"),
		ExitPrice:           90,
		ExitReason:          domain.ExitStopLoss,
		TradeReturnPct:      (90.0 - 99.0) / 99.0 * 100,
	}
	bars := []*domain.Bar{
		bar("2024-01-10", 99),
		bar("2024-01-11", 91),
	}

	stats := Analyze(outcome, bars, noCommission())

	// Exit: cash 99010 + 10*90 = 99910.
	assert.InDelta(t, 99910.0, stats.FinalEquity, 1e-9)
	assert.InDelta(t, -0.09, stats.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, stats.Trades)
	assert.Equal(t, 0.0, stats.WinRatePct)
	assert.InDelta(t, -0.09, stats.MaxDrawdownPct, 1e-9)
	assert.Less(t, stats.MaxDrawdownPct, 0.0)
}

func TestAnalyze_CommissionChargedBothWays(t *testing.T) {
	outcome := &domain.TradeOutcome{
		Ticker:              "X",
		SignalTriggeredDate: day("2024-01-10"),
		ActualEntryPrice:    100,
		ExitDate:            day("2024-01-11"),
		ExitPrice:           100,
		ExitReason:          domain.ExitNoExit,
		TradeReturnPct:      0,
	}
	bars := []*domain.Bar{
		bar("2024-01-10", 100),
		bar("2024-01-11", 100),
	}
	cfg := Config{StartingCapital: 100000, PositionSize: 10, Commission: 0.002}

	stats := Analyze(outcome, bars, cfg)

	// A flat round trip still pays commission on both fills:
	// 10*100*0.002 twice = 4.
	assert.InDelta(t, 99996.0, stats.FinalEquity, 1e-9)
}

func TestAnalyze_NoEntry(t *testing.T) {
	outcome := &domain.TradeOutcome{
		Ticker:     "X",
		ExitReason: domain.ExitNoEntry,
	}
	bars := []*domain.Bar{
		bar("2024-01-10", 100),
		bar("2024-01-11", 110),
	}

	stats := Analyze(outcome, bars, noCommission())

	assert.Equal(t, 0, stats.Trades)
	assert.Equal(t, 0.0, stats.WinRatePct)
	assert.Equal(t, 0.0, stats.ExposureTimePct)
	assert.Equal(t, 0.0, stats.TotalReturnPct)
	assert.Equal(t, 100000.0, stats.FinalEquity)
	assert.InDelta(t, 10.0, stats.BuyHoldReturnPct, 1e-9)
}

func TestAnalyze_EmptyBars(t *testing.T) {
	stats := Analyze(&domain.TradeOutcome{Ticker: "X", ExitReason: domain.ExitNoEntry}, nil, noCommission())

	assert.Equal(t, "X", stats.Ticker)
	assert.Equal(t, 100000.0, stats.FinalEquity)
	assert.Equal(t, 0, stats.Trades)
	assert.True(t, stats.WindowStart.IsZero())
}

func TestSummarize_WeightedByTradeCount(t *testing.T) {
	stats := []*domain.Statistics{
		{Ticker: "A", TotalReturnPct: 10, Trades: 1},
		{Ticker: "B", TotalReturnPct: -4, Trades: 1},
		{Ticker: "C", TotalReturnPct: 99, Trades: 0}, // never entered; zero weight
	}

	sum := Summarize(7, stats, 4)

	require.Equal(t, int64(7), sum.Batch)
	assert.Equal(t, 2, sum.TotalTrades)
	assert.InDelta(t, 3.0, sum.WeightedReturn, 1e-9)
	assert.Equal(t, 3, sum.TickersWithData)
	assert.Equal(t, 4, sum.TickersAttempted)
	assert.InDelta(t, 0.75, sum.SuccessRatio, 1e-9)
}

func TestSummarize_ZeroTradesNeverNaN(t *testing.T) {
	stats := []*domain.Statistics{
		{Ticker: "A", TotalReturnPct: 12, Trades: 0},
	}

	sum := Summarize(1, stats, 1)

	assert.Equal(t, 0, sum.TotalTrades)
	assert.Equal(t, 0.0, sum.WeightedReturn)
	assert.False(t, sum.WeightedReturn != sum.WeightedReturn, "weighted return must not be NaN")
}

func TestSummarize_EmptyBatch(t *testing.T) {
	sum := Summarize(1, nil, 0)

	assert.Equal(t, 0.0, sum.WeightedReturn)
	assert.Equal(t, 0.0, sum.SuccessRatio)
	assert.Equal(t, 0, sum.TickersWithData)
}

func TestSharpe_FlatCurveIsZero(t *testing.T) {
	assert.Equal(t, 0.0, sharpe([]float64{0, 0, 0}))
	assert.Equal(t, 0.0, sharpe(nil))
}

func TestMaxDrawdown(t *testing.T) {
	equity := []float64{100, 110, 99, 105, 120, 90}
	// Deepest decline: 120 -> 90 = -25%.
	assert.InDelta(t, -25.0, maxDrawdown(equity), 1e-9)
	assert.Equal(t, 0.0, maxDrawdown([]float64{100, 101, 102}))
}
