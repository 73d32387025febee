package yahooclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stoxxBacktester/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Logger: &mockLogger{}})
	require.NoError(t, err)
	return c
}

func window() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func TestGetDailyBars_ParsesChartPayload(t *testing.T) {
	// Two trading days with a null row in between (holiday).
	const payload = `{"chart":{"result":[{
		"timestamp":[1704880800,1704967200,1705053600],
		"indicators":{"quote":[{
			"open":[98.0,null,99.5],
			"high":[100.0,null,102.0],
			"low":[97.0,null,99.0],
			"close":[99.0,null,101.5],
			"volume":[1000,null,2000]
		}]}
	}],"error":null}}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/TSLA")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(payload))
	})

	start, end := window()
	bars, err := client.GetDailyBars(context.Background(), "TSLA", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2) // null row dropped

	assert.Equal(t, "TSLA", bars[0].Ticker)
	assert.Equal(t, 99.0, bars[0].Close)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.Equal(t, 0, bars[0].Date.Hour()) // normalized to midnight UTC
}

func TestGetDailyBars_EmptyResultIsMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	start, end := window()
	_, err := client.GetDailyBars(context.Background(), "NOPE", start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrMissingData))
}

func TestGetDailyBars_MismatchedColumnsIsMalformed(t *testing.T) {
	const payload = `{"chart":{"result":[{
		"timestamp":[1704880800,1704967200],
		"indicators":{"quote":[{
			"open":[98.0],
			"high":[100.0,101.0],
			"low":[97.0,96.0],
			"close":[99.0,100.0],
			"volume":[1000,2000]
		}]}
	}],"error":null}}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	start, end := window()
	_, err := client.GetDailyBars(context.Background(), "TSLA", start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrMalformedData))
}

func TestGetDailyBars_NotFoundIsMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	start, end := window()
	_, err := client.GetDailyBars(context.Background(), "NOPE", start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrMissingData))
}

func TestGetDailyBars_APIErrorIsMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	start, end := window()
	_, err := client.GetDailyBars(context.Background(), "DELISTED", start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrMissingData))
}
