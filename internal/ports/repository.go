package ports

import (
	"context"

	"stoxxBacktester/internal/domain"
)

// SignalRepository defines the interface for reading and storing trade signals.
type SignalRepository interface {
	// CleanSignals retrieves signals with a non-empty ticker and positive
	// buy, stop and target prices, ordered by signal date ascending.
	CleanSignals(ctx context.Context) ([]*domain.Signal, error)
	// CreateSignal saves a new signal and returns its assigned ID.
	CreateSignal(ctx context.Context, sig *domain.Signal) (int64, error)
}

// ResultRepository defines the interface for storing and retrieving
// simulation results.
type ResultRepository interface {
	// CreateResult saves one result row and returns its assigned ID.
	CreateResult(ctx context.Context, res *domain.BacktestResult) (int64, error)
	// FindByBatch retrieves all result rows for a batch, ordered by ticker.
	FindByBatch(ctx context.Context, batch int64) ([]*domain.BacktestResult, error)
	// LatestBatch returns the highest batch number present in the result
	// store, or 0 when no results exist.
	LatestBatch(ctx context.Context) (int64, error)
}

// BatchSequence allocates monotonically increasing batch numbers. The
// allocation is a single fetch-and-increment performed once per run; the
// first call yields 1 and stores 2 as the next value.
type BatchSequence interface {
	NextBatchNumber(ctx context.Context) (int64, error)
}
