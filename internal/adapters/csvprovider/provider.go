package csvprovider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stoxxBacktester/internal/domain"
	"stoxxBacktester/internal/ports"
	"stoxxBacktester/internal/utils"
)

// Provider implements ports.PriceProvider over CSV files cached on disk by
// the fetch command, one file per ticker. Lets a batch run fully offline.
type Provider struct {
	dir    string
	logger ports.Logger
}

// Config holds configuration for the CSV provider.
type Config struct {
	Dir    string // Directory containing <TICKER>.csv files
	Logger ports.Logger
}

// New creates a new CSV-backed price provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV provider")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("bar directory is required: %w", ports.ErrConfigurationError)
	}
	return &Provider{dir: cfg.Dir, logger: cfg.Logger}, nil
}

// BarPath returns the cache file path for a ticker.
func (p *Provider) BarPath(ticker string) string {
	return filepath.Join(p.dir, ticker+".csv")
}

// GetDailyBars loads the ticker's cached bars and filters them to [start, end].
func (p *Provider) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]*domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bar load canceled for %s: %w", ticker, ports.ErrContextCanceled)
	}

	path := p.BarPath(ticker)
	all, err := utils.ReadBarsFromCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no cached bars for %s at %s: %w", ticker, path, ports.ErrMissingData)
		}
		return nil, fmt.Errorf("failed to load cached bars for %s: %w", ticker, ports.ErrMalformedData)
	}

	bars := make([]*domain.Bar, 0, len(all))
	for _, b := range all {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("cached bars for %s do not cover the window: %w", ticker, ports.ErrMissingData)
	}

	p.logger.Debug(ctx, "Loaded cached bars", map[string]interface{}{"ticker": ticker, "bars": len(bars), "path": path})
	return bars, nil
}
