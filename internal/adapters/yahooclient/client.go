package yahooclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stoxxBacktester/internal/domain"
	"stoxxBacktester/internal/ports"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements ports.PriceProvider against the Yahoo Finance chart API,
// the daily-bar source the signal pipeline has always used for equities.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// Config holds configuration specific to the Yahoo client adapter.
type Config struct {
	BaseURL string        // Override for tests; defaults to the public API
	Timeout time.Duration // HTTP timeout; defaults to 30s
	Logger  ports.Logger
}

// New creates a new Yahoo chart API client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Yahoo client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// chartResponse mirrors the subset of the chart API payload we consume.
// Quote arrays use pointers because Yahoo emits nulls on non-trading days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetDailyBars retrieves daily OHLCV bars for the ticker over [start, end].
func (c *Client) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]*domain.Bar, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", ports.ErrInvalidRequest)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request for %s: %w", ticker, err)
	}
	q := req.URL.Query()
	q.Set("period1", fmt.Sprintf("%d", start.UTC().Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.UTC().Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", "stoxxBacktester/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed for %s: %w", ticker, ports.ErrConnectionFailed)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("no chart data for %s: %w", ticker, ports.ErrMissingData)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("chart request for %s: %w", ticker, ports.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("chart request for %s returned status %d: %w", ticker, resp.StatusCode, ports.ErrProviderUnavailable)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", ticker, ports.ErrMalformedData)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s (%s): %w", ticker, payload.Chart.Error.Code, ports.ErrMissingData)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s: %w", ticker, ports.ErrMissingData)
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart result for %s has no quote block: %w", ticker, ports.ErrMalformedData)
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if n == 0 {
		return nil, fmt.Errorf("chart result for %s has no timestamps: %w", ticker, ports.ErrMissingData)
	}
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return nil, fmt.Errorf("chart result for %s has mismatched columns: %w", ticker, ports.ErrMalformedData)
	}

	bars := make([]*domain.Bar, 0, n)
	for i := 0; i < n; i++ {
		// Nulls appear on partial or non-trading days; drop those rows.
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		var volume float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		day := time.Unix(result.Timestamp[i], 0).UTC()
		bars = append(bars, &domain.Bar{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Ticker: ticker,
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s after cleaning: %w", ticker, ports.ErrMissingData)
	}

	c.logger.Debug(ctx, "Fetched daily bars", map[string]interface{}{
		"ticker": ticker, "bars": len(bars),
		"start": start.Format("2006-01-02"), "end": end.Format("2006-01-02")})
	return bars, nil
}
