package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stoxxBacktester/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "backtester-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func day(date string) time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return t.UTC()
}

func TestRepository_CleanSignalsFiltering(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clean := &domain.Signal{
		SourceID:    "msg-1",
		Ticker:      "TSLA",
		SignalDate:  day("2024-01-08"),
		EntryDate:   day("2024-01-10"),
		BuyPrice:    100,
		StopPrice:   90,
		TargetPrice: 120,
	}
	_, err := repo.CreateSignal(ctx, clean)
	require.NoError(t, err)

	// Missing stop price: excluded by the clean filter.
	dirty := &domain.Signal{
		SourceID:   "msg-2",
		Ticker:     "AAPL",
		SignalDate: day("2024-01-09"),
		EntryDate:  day("2024-01-11"),
		BuyPrice:   180,
	}
	_, err = repo.CreateSignal(ctx, dirty)
	require.NoError(t, err)

	// Later signal for the same ticker must sort after the first.
	later := &domain.Signal{
		SourceID:    "msg-3",
		Ticker:      "TSLA",
		SignalDate:  day("2024-02-01"),
		EntryDate:   day("2024-02-02"),
		BuyPrice:    110,
		StopPrice:   100,
		TargetPrice: 130,
	}
	_, err = repo.CreateSignal(ctx, later)
	require.NoError(t, err)

	signals, err := repo.CleanSignals(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	assert.Equal(t, "msg-1", signals[0].SourceID)
	assert.Equal(t, "msg-3", signals[1].SourceID)
	assert.Equal(t, day("2024-01-10"), signals[0].EntryDate)
	assert.Equal(t, 90.0, signals[0].StopPrice)
}

func TestRepository_BatchSequence(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// First call initializes the counter and yields 1.
	first, err := repo.NextBatchNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.NextBatchNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	third, err := repo.NextBatchNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), third)
}

func TestRepository_ResultRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	res := &domain.BacktestResult{
		Batch: 1,
		Outcome: &domain.TradeOutcome{
			Ticker:              "TSLA",
			SignalDate:          day("2024-01-08"),
			EntryDate:           day("2024-01-10"),
			BuyPrice:            100,
			StopPrice:           90,
			TargetPrice:         120,
			SignalTriggeredDate: day("2024-01-10"),
			MarketPriceAtSignal: 99,
			ActualEntryPrice:    99,
			ExitDate:            day("2024-01-11"),
			ExitPrice:           90,
			ExitReason:          domain.ExitStopLoss,
			TradeDurationDays:   1,
			TradeReturnPct:      -9.09,
		},
		Stats: &domain.Statistics{
			Ticker:           "TSLA",
			TotalReturnPct:   -0.09,
			WinRatePct:       0,
			MaxDrawdownPct:   -0.09,
			SharpeRatio:      -1.5,
			Trades:           1,
			ExposureTimePct:  40,
			BuyHoldReturnPct: 3.2,
			StartingCapital:  100000,
			FinalEquity:      99910,
			WindowStart:      day("2023-11-11"),
			WindowEnd:        day("2024-07-08"),
			WindowDays:       240,
		},
	}

	id, err := repo.CreateResult(ctx, res)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	rows, err := repo.FindByBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, res.Outcome.Ticker, got.Outcome.Ticker)
	assert.Equal(t, res.Outcome.ExitReason, got.Outcome.ExitReason)
	assert.Equal(t, res.Outcome.ExitDate, got.Outcome.ExitDate)
	assert.Equal(t, res.Outcome.TradeDurationDays, got.Outcome.TradeDurationDays)
	assert.InDelta(t, res.Outcome.TradeReturnPct, got.Outcome.TradeReturnPct, 1e-9)
	assert.InDelta(t, res.Stats.FinalEquity, got.Stats.FinalEquity, 1e-9)
	assert.Equal(t, res.Stats.WindowStart, got.Stats.WindowStart)
	assert.Equal(t, res.Stats.Trades, got.Stats.Trades)
	assert.Equal(t, int64(1), got.Batch)

	// A batch with no rows is empty, not an error.
	empty, err := repo.FindByBatch(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_ResultNoEntryZeroDates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	res := &domain.BacktestResult{
		Batch: 2,
		Outcome: &domain.TradeOutcome{
			Ticker:     "NVDA",
			SignalDate: day("2024-01-08"),
			EntryDate:  day("2024-01-10"),
			BuyPrice:   500,
			ExitReason: domain.ExitNoEntry,
		},
		Stats: &domain.Statistics{Ticker: "NVDA", StartingCapital: 100000, FinalEquity: 100000},
	}

	_, err := repo.CreateResult(ctx, res)
	require.NoError(t, err)

	rows, err := repo.FindByBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Zero times survive the round trip as zero times.
	assert.True(t, rows[0].Outcome.ExitDate.IsZero())
	assert.True(t, rows[0].Outcome.SignalTriggeredDate.IsZero())
	assert.Equal(t, domain.ExitNoEntry, rows[0].Outcome.ExitReason)
}

func TestRepository_LatestBatch(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// No results yet.
	latest, err := repo.LatestBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	for _, batch := range []int64{1, 3, 2} {
		_, err := repo.CreateResult(ctx, &domain.BacktestResult{
			Batch:   batch,
			Outcome: &domain.TradeOutcome{Ticker: "TSLA", ExitReason: domain.ExitNoEntry},
			Stats:   &domain.Statistics{Ticker: "TSLA"},
		})
		require.NoError(t, err)
	}

	latest, err = repo.LatestBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)
}
