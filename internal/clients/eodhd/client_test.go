package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vista/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))
	c.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }
	return c
}

func TestGetHistory_StringFields(t *testing.T) {
	// some exchanges return price and volume fields as strings
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eod/BHP.AU":
			assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
			assert.Equal(t, "d", r.URL.Query().Get("period"))
			assert.Equal(t, "2024-02-15", r.URL.Query().Get("from"))
			w.Write([]byte(`[
				{"date":"2024-03-14","open":"42.10","high":"43.50","low":"41.80","close":"43.25","adjusted_close":"43.25","volume":"5000000"},
				{"date":"2024-03-13","open":41.0,"high":42.0,"low":40.5,"close":41.5,"adjusted_close":41.5,"volume":4000000}
			]`))
		case "/div/BHP.AU":
			w.Write([]byte(`[{"date":"2024-03-14","value":"0.72"}]`))
		case "/splits/BHP.AU":
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	req := models.HistoryRequest{Interval: models.IntervalDay, Period: "1mo", Actions: true}
	bars, err := client.GetHistory(context.Background(), "BHP.AU", req)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 43.25, bars[1].Close)
	assert.Equal(t, int64(5000000), bars[1].Volume)
	assert.Equal(t, 0.72, bars[1].Dividends)
	assert.Zero(t, bars[0].Dividends)
}

func TestGetHistory_DefaultExchange(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`[]`))
	})

	_, err := client.GetHistory(context.Background(), "AAPL", models.HistoryRequest{Interval: models.IntervalWeek})
	require.NoError(t, err)
	assert.Equal(t, "/eod/AAPL.US", path)
}

func TestGetHistory_UnsupportedInterval(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, interval := range []models.Interval{models.IntervalFiveDays, models.IntervalQuarter} {
		_, err := client.GetHistory(context.Background(), "AAPL", models.HistoryRequest{Interval: interval})
		var cfgErr *models.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr), interval.String())
	}
	assert.False(t, called)
}

func TestGetHistory_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthenticated"))
	})

	_, err := client.GetHistory(context.Background(), "AAPL", models.HistoryRequest{Interval: models.IntervalDay})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/eod/AAPL.US", apiErr.Endpoint)
}

func TestDateRange(t *testing.T) {
	client := NewClient("k")
	client.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }

	tests := []struct {
		period string
		from   time.Time
	}{
		{"5d", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"ytd", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"max", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, to := client.dateRange(models.HistoryRequest{Period: tt.period})
			assert.Equal(t, tt.from, from)
			assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), to)
		})
	}
}

func TestParseSplit(t *testing.T) {
	assert.Equal(t, 2.0, parseSplit("2.000000/1.000000"))
	assert.Equal(t, 0.25, parseSplit("1/4"))
	assert.Zero(t, parseSplit("garbage"))
	assert.Zero(t, parseSplit("1/0"))
}

func TestGetQuarterlyFinancials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/AAPL.US", r.URL.Path)
		w.Write([]byte(`{"Financials":{"Income_Statement":{"currency_symbol":"USD","quarterly":{
			"2023-09-30":{"date":"2023-09-30","filing_date":"2023-11-03","totalRevenue":"89498000000.00","netIncome":null},
			"2023-12-31":{"date":"2023-12-31","filing_date":"2024-02-02","totalRevenue":119575000000,"netIncome":"33916000000.00"}
		}}}}`))
	})

	stmt, err := client.GetQuarterlyFinancials(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, []string{"netIncome", "totalRevenue"}, stmt.Metrics)
	require.Len(t, stmt.Periods, 2)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), stmt.Periods[0])

	require.NotNil(t, stmt.Value(0, 0))
	assert.Equal(t, 33916000000.0, *stmt.Value(0, 0))
	assert.Nil(t, stmt.Value(0, 1))
	require.NotNil(t, stmt.Value(1, 1))
	assert.Equal(t, 89498000000.0, *stmt.Value(1, 1))
}

func TestGetInstitutionalHolders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Holders":{"Institutions":{
			"0":{"name":"Vanguard Group Inc","date":"2023-12-31","totalShares":8.72,"totalAssets":5.1,"currentShares":1340000000},
			"1":{"name":"BlackRock Inc","date":"2023-12-31","totalShares":"6.5","totalAssets":4.2,"currentShares":1000000000}
		}}}`))
	})

	holders, err := client.GetInstitutionalHolders(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, holders, 2)

	assert.Equal(t, "Vanguard Group Inc", holders[0].Holder)
	assert.Equal(t, int64(1340000000), holders[0].Shares)
	assert.InDelta(t, 0.0872, holders[0].PctHeld, 1e-9)
	assert.Equal(t, "BlackRock Inc", holders[1].Holder)
}

func TestGetRecommendations_Empty(t *testing.T) {
	client := NewClient("k")
	events, err := client.GetRecommendations(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Empty(t, events)
}
