package app

import (
	"context"
	"fmt"
	"sync"

	"stoxxBacktester/config"
	"stoxxBacktester/internal/analytics"
	"stoxxBacktester/internal/domain"
	"stoxxBacktester/internal/ports"
	"stoxxBacktester/internal/simulator"
)

// BatchService orchestrates one simulation batch: it loads the clean
// signals, allocates a batch number, fans the tickers out over a worker
// pool, and persists one result row per ticker.
type BatchService struct {
	cfg     *config.Config
	logger  ports.Logger
	prices  ports.PriceProvider
	signals ports.SignalRepository
	results ports.ResultRepository
	batches ports.BatchSequence
}

// BatchReport is the in-memory outcome of one Run, for display and tests.
type BatchReport struct {
	Batch         int64
	Summary       *domain.PortfolioSummary
	Stats         []*domain.Statistics
	FailedTickers []string
}

// NewBatchService creates a new application service instance.
func NewBatchService(
	cfg *config.Config,
	logger ports.Logger,
	prices ports.PriceProvider,
	signals ports.SignalRepository,
	results ports.ResultRepository,
	batches ports.BatchSequence,
) (*BatchService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || prices == nil || signals == nil || results == nil || batches == nil {
		return nil, fmt.Errorf("missing required dependencies for BatchService")
	}

	// Validate config values needed by the service
	if cfg.StartingCapital <= 0 {
		return nil, fmt.Errorf("configuration StartingCapital must be positive")
	}
	if cfg.PositionSize <= 0 {
		return nil, fmt.Errorf("configuration PositionSize must be positive")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("configuration Workers must be positive")
	}

	return &BatchService{
		cfg:     cfg,
		logger:  logger,
		prices:  prices,
		signals: signals,
		results: results,
		batches: batches,
	}, nil
}

// Run executes one batch over all clean signals. Ticker-level failures are
// logged and counted but never abort the batch; a zero-signal batch yields
// an empty report, not an error.
func (s *BatchService) Run(ctx context.Context) (*BatchReport, error) {
	signals, err := s.signals.CleanSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signals: %w", err)
	}

	// Earliest signal per ticker wins; later ones are ignored for this run.
	// Signals arrive ordered by signal date, so first seen is earliest.
	byTicker := make(map[string]*domain.Signal)
	tickers := make([]string, 0, len(signals))
	for _, sig := range signals {
		if _, seen := byTicker[sig.Ticker]; seen {
			continue
		}
		byTicker[sig.Ticker] = sig
		tickers = append(tickers, sig.Ticker)
	}

	// One batch number per run, allocated before any ticker work so a
	// parallel fan-out cannot skew the counter.
	batch, err := s.batches.NextBatchNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate batch number: %w", err)
	}

	s.logger.Info(ctx, "Starting backtest batch", map[string]interface{}{
		"batch": batch, "signals": len(signals), "tickers": len(tickers), "workers": s.cfg.Workers})

	report := &BatchReport{Batch: batch}
	if len(tickers) == 0 {
		report.Summary = analytics.Summarize(batch, nil, 0)
		s.logger.Info(ctx, "No clean signals to simulate; batch is empty", map[string]interface{}{"batch": batch})
		return report, nil
	}

	type tickerResult struct {
		ticker string
		stats  *domain.Statistics
		err    error
	}

	jobs := make(chan string)
	out := make(chan tickerResult)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				stats, err := s.runTicker(ctx, batch, byTicker[ticker])
				out <- tickerResult{ticker: ticker, stats: stats, err: err}
			}
		}()
	}

	go func() {
		for _, ticker := range tickers {
			jobs <- ticker
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	for res := range out {
		if res.err != nil {
			s.logger.Warn(ctx, "Ticker simulation failed; excluded from aggregates", map[string]interface{}{
				"ticker": res.ticker, "batch": batch, "reason": res.err.Error()})
			report.FailedTickers = append(report.FailedTickers, res.ticker)
			continue
		}
		report.Stats = append(report.Stats, res.stats)
	}

	report.Summary = analytics.Summarize(batch, report.Stats, len(tickers))
	s.logger.Info(ctx, "Backtest batch complete", map[string]interface{}{
		"batch":          batch,
		"tickers":        len(tickers),
		"results":        len(report.Stats),
		"failed":         len(report.FailedTickers),
		"totalTrades":    report.Summary.TotalTrades,
		"weightedReturn": report.Summary.WeightedReturn,
	})
	return report, nil
}

// runTicker simulates one ticker's signal and persists the result row.
// Every failure is returned to the caller; nothing here aborts the batch.
func (s *BatchService) runTicker(ctx context.Context, batch int64, sig *domain.Signal) (*domain.Statistics, error) {
	if !sig.IsOrdered() {
		// Never validated upstream; run the state machine mechanically and
		// just flag it.
		s.logger.Warn(ctx, "Signal prices not ordered stop < buy < target; simulating as-is", map[string]interface{}{
			"ticker": sig.Ticker, "buy": sig.BuyPrice, "stop": sig.StopPrice, "target": sig.TargetPrice})
	}

	// Padded window around the entry date, as the signal source's price
	// history was always fetched.
	start := sig.EntryDate.AddDate(0, 0, -s.cfg.LeadDays)
	end := sig.EntryDate.AddDate(0, 0, s.cfg.TrailDays)

	bars, err := s.prices.GetDailyBars(ctx, sig.Ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("price history unavailable for %s: %w", sig.Ticker, err)
	}

	outcome := simulator.Simulate(sig, bars)
	stats := analytics.Analyze(outcome, bars, analytics.Config{
		StartingCapital: s.cfg.StartingCapital,
		PositionSize:    s.cfg.PositionSize,
		Commission:      s.cfg.Commission,
	})

	res := &domain.BacktestResult{Batch: batch, Outcome: outcome, Stats: stats}
	if _, err := s.results.CreateResult(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to persist result for %s: %w", sig.Ticker, err)
	}

	s.logger.Info(ctx, "Ticker simulated", map[string]interface{}{
		"ticker":     sig.Ticker,
		"batch":      batch,
		"exitReason": outcome.ExitReason,
		"returnPct":  outcome.TradeReturnPct,
		"duration":   outcome.TradeDurationDays,
	})
	return stats, nil
}

// Report rebuilds a batch report from the result store. A batch of 0 means
// the most recent batch.
func (s *BatchService) Report(ctx context.Context, batch int64) (*BatchReport, error) {
	if batch == 0 {
		latest, err := s.results.LatestBatch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find latest batch: %w", err)
		}
		batch = latest
	}

	rows, err := s.results.FindByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for batch %d: %w", batch, err)
	}

	report := &BatchReport{Batch: batch}
	for _, row := range rows {
		report.Stats = append(report.Stats, row.Stats)
	}
	// Failed attempts are not persisted, so attempted equals stored rows here.
	report.Summary = analytics.Summarize(batch, report.Stats, len(rows))
	return report, nil
}
