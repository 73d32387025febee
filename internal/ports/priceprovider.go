package ports

import (
	"context"
	"time"

	"stoxxBacktester/internal/domain"
)

// PriceProvider defines the interface for fetching daily price history.
// This abstraction decouples the simulation core from any specific market
// data source (HTTP API, exchange client, cached CSV files).
type PriceProvider interface {
	// GetDailyBars retrieves daily OHLCV bars for the ticker over
	// [start, end], sorted ascending by date. Implementations return
	// ErrMissingData when no usable bars exist for the window and
	// ErrMalformedData when the source response cannot be interpreted.
	GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]*domain.Bar, error)
}
