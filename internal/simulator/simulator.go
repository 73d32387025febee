package simulator

import (
	"time"

	"stoxxBacktester/internal/domain"
)

// Simulate plays one signal against a ticker's daily bars and returns the
// resulting trade outcome. Bars must be sorted ascending by date; an empty
// slice yields a NO_ENTRY outcome with all trade fields zeroed.
//
// The walk is a single forward pass with no look-ahead. Entry fills at the
// close of the bar whose date matches the signal's entry date, and only when
// that close is at or below the buy limit. Exits are evaluated on bars
// strictly after the entry bar: the stop is checked before the target, so a
// bar that reaches both levels always closes as a stop-loss. The stop fills
// at the stop price and the target at the target price, not at the bar's
// extreme.
//
// Simulate holds no state between calls and never mutates its inputs, so
// independent tickers can be simulated concurrently.
func Simulate(sig *domain.Signal, bars []*domain.Bar) *domain.TradeOutcome {
	out := &domain.TradeOutcome{
		Ticker:      sig.Ticker,
		SignalDate:  sig.SignalDate,
		EntryDate:   sig.EntryDate,
		BuyPrice:    sig.BuyPrice,
		StopPrice:   sig.StopPrice,
		TargetPrice: sig.TargetPrice,
		ExitReason:  domain.ExitNoEntry,
	}

	var pos *domain.Position
	for _, bar := range bars {
		if pos == nil {
			if !bar.SameDay(sig.EntryDate) {
				continue
			}
			out.SignalTriggeredDate = bar.Date
			out.MarketPriceAtSignal = bar.Close

			if bar.Close > sig.BuyPrice {
				// Limit condition failed on the entry day; terminal.
				return out
			}

			pos = &domain.Position{
				Ticker:      sig.Ticker,
				EntryPrice:  bar.Close,
				EntryDate:   bar.Date,
				StopPrice:   sig.StopPrice,
				TargetPrice: sig.TargetPrice,
				Open:        true,
			}
			out.ActualEntryPrice = bar.Close
			// Entry and exit cannot occur on the same bar in this model.
			continue
		}

		// Stop before target: a bar reaching both levels closes as a stop.
		if bar.Low <= pos.StopPrice {
			return closeOut(out, pos, bar.Date, pos.StopPrice, domain.ExitStopLoss)
		}
		if bar.High >= pos.TargetPrice {
			return closeOut(out, pos, bar.Date, pos.TargetPrice, domain.ExitTargetHit)
		}
	}

	if pos != nil {
		// Bars exhausted while still open; mark to market at the last close.
		last := bars[len(bars)-1]
		return closeOut(out, pos, last.Date, last.Close, domain.ExitNoExit)
	}

	// Entry date never matched any bar (holiday, weekend signal, or window
	// misconfiguration). Terminal NO_ENTRY, not an error.
	return out
}

func closeOut(out *domain.TradeOutcome, pos *domain.Position, exitDate time.Time, exitPrice float64, reason domain.ExitReason) *domain.TradeOutcome {
	pos.Open = false
	out.ExitDate = exitDate
	out.ExitPrice = exitPrice
	out.ExitReason = reason
	out.TradeDurationDays = int(exitDate.Sub(pos.EntryDate).Hours() / 24)
	out.TradeReturnPct = (exitPrice - pos.EntryPrice) / pos.EntryPrice * 100
	return out
}
