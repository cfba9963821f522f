package yahoo

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

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "MSFT", "currency": "USD", "exchangeTimezoneName": "America/New_York"},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "events": {
        "dividends": {"1704378600": {"amount": 0.75, "date": 1704378600}},
        "splits": {"1704205800": {"date": 1704205800, "numerator": 2, "denominator": 1}}
      },
      "indicators": {
        "quote": [{
          "open":   [9.5, null, 11.5],
          "high":   [10.5, null, 12.5],
          "low":    [9.0, null, 11.0],
          "close":  [10.0, null, 12.0],
          "volume": [1000, null, 3000]
        }],
        "adjclose": [{"adjclose": [9.0, null, 12.0]}]
      }
    }],
    "error": null
  }
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
}

func dailyRequest() models.HistoryRequest {
	return models.HistoryRequest{Interval: models.IntervalDay, Period: "1mo", Actions: true}
}

func TestGetHistory_ParsesChart(t *testing.T) {
	var query map[string][]string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/MSFT", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartJSON))
	})

	bars, err := client.GetHistory(context.Background(), "MSFT", dailyRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"1d"}, query["interval"])
	assert.Equal(t, []string{"1mo"}, query["range"])
	assert.Equal(t, []string{"div|split"}, query["events"])

	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, int64(1000), bars[0].Volume)
	assert.Equal(t, 2.0, bars[0].StockSplits)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), bars[1].Date)
	assert.Equal(t, 0.75, bars[1].Dividends)
}

func TestGetHistory_WithoutActions(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	})

	req := dailyRequest()
	req.Actions = false
	bars, err := client.GetHistory(context.Background(), "MSFT", req)
	require.NoError(t, err)

	for _, b := range bars {
		assert.Zero(t, b.Dividends)
		assert.Zero(t, b.StockSplits)
	}
}

func TestGetHistory_AutoAdjust(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	})

	req := dailyRequest()
	req.AutoAdjust = true
	bars, err := client.GetHistory(context.Background(), "MSFT", req)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.InDelta(t, 9.0, bars[0].Close, 1e-9)
	assert.InDelta(t, 9.5*0.9, bars[0].Open, 1e-9)
	assert.InDelta(t, 12.0, bars[1].Close, 1e-9)
}

func TestGetHistory_BackAdjustKeepsClose(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	})

	req := dailyRequest()
	req.BackAdjust = true
	bars, err := client.GetHistory(context.Background(), "MSFT", req)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, bars[0].Close, 1e-9)
	assert.InDelta(t, 9.5*0.9, bars[0].Open, 1e-9)
}

func TestGetHistory_DateRange(t *testing.T) {
	var query map[string][]string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(chartJSON))
	})

	req := models.HistoryRequest{
		Interval: models.IntervalWeek,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	_, err := client.GetHistory(context.Background(), "MSFT", req)
	require.NoError(t, err)

	assert.Equal(t, []string{"1wk"}, query["interval"])
	assert.Equal(t, []string{"1704067200"}, query["period1"])
	assert.Equal(t, []string{"1706745600"}, query["period2"])
	assert.NotContains(t, query, "range")
}

func TestGetHistory_APIError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := client.GetHistory(context.Background(), "NOPE", dailyRequest())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "No data found, symbol may be delisted", apiErr.Message)
}

func TestGetQuarterlyFinancials(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/MSFT", r.URL.Path)
		assert.Equal(t, "incomeStatementHistoryQuarterly", r.URL.Query().Get("modules"))
		w.Write([]byte(`{"quoteSummary":{"result":[{"incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
			{"maxAge":1,"endDate":{"raw":1703980800,"fmt":"2023-12-31"},"totalRevenue":{"raw":300,"fmt":"300"},"netIncome":{"raw":30}},
			{"maxAge":1,"endDate":{"raw":1696032000,"fmt":"2023-09-30"},"totalRevenue":{"raw":200},"netIncome":{}}
		]}}],"error":null}}`))
	})

	stmt, err := client.GetQuarterlyFinancials(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.Equal(t, []string{"netIncome", "totalRevenue"}, stmt.Metrics)
	require.Len(t, stmt.Periods, 2)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), stmt.Periods[0])

	require.NotNil(t, stmt.Value(0, 0))
	assert.Equal(t, 30.0, *stmt.Value(0, 0))
	assert.Nil(t, stmt.Value(0, 1))
	assert.Equal(t, 200.0, *stmt.Value(1, 1))
}

func TestGetQuarterlyFinancials_NonNumericCellsUnreported(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
			{"endDate":{"raw":1703980800},"ebit":"n/a","netIncome":{"raw":"30"},"totalRevenue":{"raw":300}}
		]}}],"error":null}}`))
	})

	stmt, err := client.GetQuarterlyFinancials(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.Equal(t, []string{"ebit", "netIncome", "totalRevenue"}, stmt.Metrics)
	assert.Nil(t, stmt.Value(0, 0))
	assert.Nil(t, stmt.Value(1, 0))
	require.NotNil(t, stmt.Value(2, 0))
	assert.Equal(t, 300.0, *stmt.Value(2, 0))
}

func TestReportedValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"formatted number", `{"raw":1.5,"fmt":"1.5"}`, models.Float(1.5)},
		{"empty object", `{}`, nil},
		{"null", `null`, nil},
		{"string", `"n/a"`, nil},
		{"string raw", `{"raw":"1.5"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportedValue([]byte(tt.raw)))
		})
	}
}

func TestGetRecommendations(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"upgradeDowngradeHistory":{"history":[
			{"epochGradeDate":1704196800,"firm":"Acme Securities","toGrade":"Buy","fromGrade":"Hold","action":"up"}
		]}}],"error":null}}`))
	})

	events, err := client.GetRecommendations(context.Background(), "MSFT")
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "Acme Securities", events[0].Firm)
	assert.Equal(t, "Buy", events[0].ToGrade)
	assert.Equal(t, "Hold", events[0].FromGrade)
	assert.Equal(t, "up", events[0].Action)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), events[0].Date)
}

func TestGetInstitutionalHolders(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"institutionOwnership":{"ownershipList":[
			{"reportDate":{"raw":1703980800},"organization":"Vanguard Group Inc","pctHeld":{"raw":0.0886},"position":{"raw":658000000},"value":{"raw":247000000000}}
		]}}],"error":null}}`))
	})

	holders, err := client.GetInstitutionalHolders(context.Background(), "MSFT")
	require.NoError(t, err)
	require.Len(t, holders, 1)

	assert.Equal(t, "Vanguard Group Inc", holders[0].Holder)
	assert.Equal(t, int64(658000000), holders[0].Shares)
	assert.InDelta(t, 0.0886, holders[0].PctHeld, 1e-9)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), holders[0].DateReported)
}

func TestQuoteSummary_MissingModule(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{}],"error":null}}`))
	})

	events, err := client.GetRecommendations(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Empty(t, events)

	stmt, err := client.GetQuarterlyFinancials(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Empty(t, stmt.Periods)
}
