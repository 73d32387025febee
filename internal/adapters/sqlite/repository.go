package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stoxxBacktester/internal/domain"
	"stoxxBacktester/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.SignalRepository, ports.ResultRepository and
// ports.BatchSequence using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backteststoxx.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT UNIQUE,
		ticker TEXT NOT NULL,
		signal_date INTEGER NOT NULL,
		entry_date INTEGER NOT NULL,
		buy_price REAL NOT NULL,
		stop_price REAL,
		target_price REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS backtest_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		signal_date TEXT,
		entry_date TEXT,
		buy_price_limit REAL,
		stop_loss_price REAL,
		target_price REAL,
		signal_triggered_date TEXT,
		market_price_at_signal REAL,
		actual_entry_price REAL,
		exit_date TEXT,
		exit_price REAL,
		exit_reason TEXT,
		trade_duration_days INTEGER,
		individual_trade_return_pct REAL,
		overall_return_pct REAL,
		win_rate_pct REAL,
		max_drawdown_pct REAL,
		sharpe_ratio REAL,
		number_of_trades INTEGER,
		exposure_time_pct REAL,
		buy_hold_return_pct REAL,
		starting_capital REAL,
		final_equity REAL,
		backtest_start_date TEXT,
		backtest_end_date TEXT,
		backtest_duration_days INTEGER,
		backtest_batch INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS backtest_batch_sequence (
		id INTEGER PRIMARY KEY,
		next_batch_number INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trade_signals_ticker ON trade_signals (ticker);
	CREATE INDEX IF NOT EXISTS idx_backtest_results_batch ON backtest_results (backtest_batch, ticker);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- SignalRepository Implementation ---

// CreateSignal saves a new signal and returns its assigned ID.
func (r *Repository) CreateSignal(ctx context.Context, sig *domain.Signal) (int64, error) {
	const query = `
	INSERT INTO trade_signals (source_id, ticker, signal_date, entry_date, buy_price, stop_price, target_price)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		sig.SourceID, sig.Ticker, sig.SignalDate.UnixMilli(), sig.EntryDate.UnixMilli(),
		sig.BuyPrice, sig.StopPrice, sig.TargetPrice)
	if err != nil {
		return 0, fmt.Errorf("failed to insert signal for ticker %s: %w", sig.Ticker, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for signal %s: %w", sig.Ticker, err)
	}
	sig.ID = id // Update the domain object with the ID
	r.logger.Debug(ctx, "Signal created", map[string]interface{}{"signalID": id, "ticker": sig.Ticker})
	return id, nil
}

// CleanSignals retrieves signals with a non-empty ticker and positive buy,
// stop and target prices, ordered by signal date ascending. Rows failing the
// filter were never validated upstream and are simply excluded here.
func (r *Repository) CleanSignals(ctx context.Context) ([]*domain.Signal, error) {
	const query = `
	SELECT id, COALESCE(source_id, ''), ticker, signal_date, entry_date, buy_price,
	       COALESCE(stop_price, 0), COALESCE(target_price, 0)
	FROM trade_signals
	WHERE ticker IS NOT NULL AND ticker != ''
	  AND buy_price IS NOT NULL AND buy_price > 0
	  AND stop_price IS NOT NULL AND stop_price > 0
	  AND target_price IS NOT NULL AND target_price > 0
	ORDER BY signal_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clean signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*domain.Signal, 0)
	for rows.Next() {
		sig := &domain.Signal{}
		var signalMillis, entryMillis int64
		if err := rows.Scan(&sig.ID, &sig.SourceID, &sig.Ticker, &signalMillis, &entryMillis,
			&sig.BuyPrice, &sig.StopPrice, &sig.TargetPrice); err != nil {
			return nil, fmt.Errorf("failed to scan signal during CleanSignals: %w", err)
		}
		// Timestamps are stored as milliseconds since epoch.
		sig.SignalDate = time.UnixMilli(signalMillis).UTC()
		sig.EntryDate = time.UnixMilli(entryMillis).UTC()
		signals = append(signals, sig)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return signals, nil
}

// --- BatchSequence Implementation ---

// NextBatchNumber performs the fetch-and-increment on the single-row batch
// counter. The first call initializes the row and yields 1.
func (r *Repository) NextBatchNumber(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin batch sequence transaction: %w", err)
	}
	defer tx.Rollback()

	var batch int64
	err = tx.QueryRowContext(ctx, `SELECT next_batch_number FROM backtest_batch_sequence WHERE id = 1`).Scan(&batch)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		batch = 1
		if _, err := tx.ExecContext(ctx, `INSERT INTO backtest_batch_sequence (id, next_batch_number) VALUES (1, 2)`); err != nil {
			return 0, fmt.Errorf("failed to initialize batch sequence: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to read batch sequence: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE backtest_batch_sequence SET next_batch_number = ? WHERE id = 1`, batch+1); err != nil {
			return 0, fmt.Errorf("failed to advance batch sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch sequence: %w", err)
	}
	r.logger.Debug(ctx, "Batch number allocated", map[string]interface{}{"batch": batch})
	return batch, nil
}

// --- ResultRepository Implementation ---

const dateLayout = "2006-01-02"

// CreateResult saves one result row and returns its assigned ID.
func (r *Repository) CreateResult(ctx context.Context, res *domain.BacktestResult) (int64, error) {
	const query = `
	INSERT INTO backtest_results (
		ticker, signal_date, entry_date, buy_price_limit, stop_loss_price, target_price,
		signal_triggered_date, market_price_at_signal, actual_entry_price,
		exit_date, exit_price, exit_reason, trade_duration_days, individual_trade_return_pct,
		overall_return_pct, win_rate_pct, max_drawdown_pct, sharpe_ratio,
		number_of_trades, exposure_time_pct, buy_hold_return_pct,
		starting_capital, final_equity, backtest_start_date, backtest_end_date,
		backtest_duration_days, backtest_batch
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	o, s := res.Outcome, res.Stats
	result, err := r.db.ExecContext(ctx, query,
		o.Ticker, formatDate(o.SignalDate), formatDate(o.EntryDate), o.BuyPrice, o.StopPrice, o.TargetPrice,
		formatDate(o.SignalTriggeredDate), o.MarketPriceAtSignal, o.ActualEntryPrice,
		formatDate(o.ExitDate), o.ExitPrice, string(o.ExitReason), o.TradeDurationDays, o.TradeReturnPct,
		s.TotalReturnPct, s.WinRatePct, s.MaxDrawdownPct, s.SharpeRatio,
		s.Trades, s.ExposureTimePct, s.BuyHoldReturnPct,
		s.StartingCapital, s.FinalEquity, formatDate(s.WindowStart), formatDate(s.WindowEnd),
		s.WindowDays, res.Batch)
	if err != nil {
		return 0, fmt.Errorf("failed to insert backtest result for ticker %s: %w", o.Ticker, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for result %s: %w", o.Ticker, err)
	}
	res.ID = id
	r.logger.Debug(ctx, "Backtest result created", map[string]interface{}{
		"resultID": id, "ticker": o.Ticker, "batch": res.Batch, "exitReason": o.ExitReason})
	return id, nil
}

// FindByBatch retrieves all result rows for a batch, ordered by ticker.
func (r *Repository) FindByBatch(ctx context.Context, batch int64) ([]*domain.BacktestResult, error) {
	const query = `
	SELECT id, ticker, signal_date, entry_date, buy_price_limit, stop_loss_price, target_price,
	       signal_triggered_date, market_price_at_signal, actual_entry_price,
	       exit_date, exit_price, exit_reason, trade_duration_days, individual_trade_return_pct,
	       overall_return_pct, win_rate_pct, max_drawdown_pct, sharpe_ratio,
	       number_of_trades, exposure_time_pct, buy_hold_return_pct,
	       starting_capital, final_equity, backtest_start_date, backtest_end_date,
	       backtest_duration_days, backtest_batch
	FROM backtest_results
	WHERE backtest_batch = ?
	ORDER BY ticker`

	rows, err := r.db.QueryContext(ctx, query, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for batch %d: %w", batch, err)
	}
	defer rows.Close()

	results := make([]*domain.BacktestResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result during FindByBatch: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// LatestBatch returns the highest batch number present in the result store.
func (r *Repository) LatestBatch(ctx context.Context) (int64, error) {
	const query = `SELECT COALESCE(MAX(backtest_batch), 0) FROM backtest_results`
	var batch int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&batch); err != nil {
		return 0, fmt.Errorf("failed to find latest batch: %w", err)
	}
	return batch, nil
}

// --- Helpers ---

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanResult scans a row into a domain.BacktestResult.
func scanResult(s scanner) (*domain.BacktestResult, error) {
	o := &domain.TradeOutcome{}
	st := &domain.Statistics{}
	res := &domain.BacktestResult{Outcome: o, Stats: st}

	var signalDate, entryDate, triggeredDate, exitDate, windowStart, windowEnd, exitReason string
	err := s.Scan(
		&res.ID, &o.Ticker, &signalDate, &entryDate, &o.BuyPrice, &o.StopPrice, &o.TargetPrice,
		&triggeredDate, &o.MarketPriceAtSignal, &o.ActualEntryPrice,
		&exitDate, &o.ExitPrice, &exitReason, &o.TradeDurationDays, &o.TradeReturnPct,
		&st.TotalReturnPct, &st.WinRatePct, &st.MaxDrawdownPct, &st.SharpeRatio,
		&st.Trades, &st.ExposureTimePct, &st.BuyHoldReturnPct,
		&st.StartingCapital, &st.FinalEquity, &windowStart, &windowEnd,
		&st.WindowDays, &res.Batch)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}

	st.Ticker = o.Ticker
	o.SignalDate = parseDate(signalDate)
	o.EntryDate = parseDate(entryDate)
	o.SignalTriggeredDate = parseDate(triggeredDate)
	o.ExitDate = parseDate(exitDate)
	o.ExitReason = domain.ExitReason(exitReason)
	st.WindowStart = parseDate(windowStart)
	st.WindowEnd = parseDate(windowEnd)
	return res, nil
}
