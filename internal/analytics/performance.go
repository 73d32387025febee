package analytics

import (
	"math"

	"stoxxBacktester/internal/domain"
)

// tradingDaysPerYear is used to annualize the Sharpe ratio of daily returns.
const tradingDaysPerYear = 252

// Config holds the capital model applied when rebuilding the equity curve.
type Config struct {
	StartingCapital float64 // Cash at the start of the window
	PositionSize    float64 // Units bought per fill
	Commission      float64 // Proportional cost applied on entry and exit fills
}

// Analyze computes per-ticker statistics for one simulated trade over its
// bar window. The equity curve assumes the configured starting capital, a
// fixed position size, and commission on both fills; bars outside the held
// period contribute flat equity.
func Analyze(outcome *domain.TradeOutcome, bars []*domain.Bar, cfg Config) *domain.Statistics {
	stats := &domain.Statistics{
		Ticker:          outcome.Ticker,
		StartingCapital: cfg.StartingCapital,
		FinalEquity:     cfg.StartingCapital,
	}
	if len(bars) == 0 {
		return stats
	}

	stats.WindowStart = bars[0].Date
	stats.WindowEnd = bars[len(bars)-1].Date
	stats.WindowDays = int(stats.WindowEnd.Sub(stats.WindowStart).Hours() / 24)
	if bars[0].Close != 0 {
		stats.BuyHoldReturnPct = (bars[len(bars)-1].Close - bars[0].Close) / bars[0].Close * 100
	}

	cash := cfg.StartingCapital
	holding := 0.0
	openBars := 0
	filled := false

	equity := make([]float64, 0, len(bars))
	for _, bar := range bars {
		if outcome.Entered() && !filled && bar.SameDay(outcome.SignalTriggeredDate) {
			filled = true
			cash -= cfg.PositionSize * outcome.ActualEntryPrice * (1 + cfg.Commission)
			holding = cfg.PositionSize
		}

		if holding > 0 {
			openBars++
			if bar.SameDay(outcome.ExitDate) {
				cash += holding * outcome.ExitPrice * (1 - cfg.Commission)
				holding = 0
				equity = append(equity, cash)
				continue
			}
			equity = append(equity, cash+holding*bar.Close)
			continue
		}
		equity = append(equity, cash)
	}

	// NO_EXIT trades exit on the last bar, so the curve always ends flat;
	// anything still held was marked at the last close inside the loop.
	final := equity[len(equity)-1]

	stats.FinalEquity = final
	stats.TotalReturnPct = (final - cfg.StartingCapital) / cfg.StartingCapital * 100
	stats.ExposureTimePct = float64(openBars) / float64(len(bars)) * 100

	if outcome.Entered() {
		stats.Trades = 1
		if outcome.TradeReturnPct > 0 {
			stats.WinRatePct = 100
		}
	}

	stats.MaxDrawdownPct = maxDrawdown(equity)
	stats.SharpeRatio = sharpe(dailyReturns(equity))

	return stats
}

// Summarize aggregates per-ticker statistics across one batch. Weights are
// trade counts, so tickers that never entered contribute nothing; a batch
// with zero trades yields a zero weighted return, never NaN.
func Summarize(batch int64, stats []*domain.Statistics, attempted int) *domain.PortfolioSummary {
	summary := &domain.PortfolioSummary{
		Batch:            batch,
		TickersWithData:  len(stats),
		TickersAttempted: attempted,
	}

	var weighted float64
	for _, s := range stats {
		summary.TotalTrades += s.Trades
		weighted += s.TotalReturnPct * float64(s.Trades)
	}
	if summary.TotalTrades > 0 {
		summary.WeightedReturn = weighted / float64(summary.TotalTrades)
	}
	if attempted > 0 {
		summary.SuccessRatio = float64(summary.TickersWithData) / float64(attempted)
	}
	return summary
}

// maxDrawdown returns the deepest peak-to-trough decline of the equity
// curve as a negative percentage, or 0 for a curve that never declines.
func maxDrawdown(equity []float64) float64 {
	var maxDD float64
	peak := math.Inf(-1)
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (e - peak) / peak * 100
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func dailyReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	return returns
}

// sharpe computes the annualized Sharpe ratio of daily returns, assuming a
// zero risk-free rate. Returns 0 when there is no variance to measure.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}
