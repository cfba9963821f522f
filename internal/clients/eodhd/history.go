package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vista/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// eodPeriods maps intervals to the EODHD period parameter. EODHD has no
// five-day or quarterly bars.
var eodPeriods = map[models.Interval]string{
	models.IntervalDay:   "d",
	models.IntervalWeek:  "w",
	models.IntervalMonth: "m",
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

type dividendResponse struct {
	Date  string      `json:"date"`
	Value flexFloat64 `json:"value"`
}

type splitResponse struct {
	Date  string `json:"date"`
	Split string `json:"split"`
}

// GetHistory retrieves end-of-day price data in ascending date order.
func (c *Client) GetHistory(ctx context.Context, ticker string, req models.HistoryRequest) ([]models.Bar, error) {
	period, ok := eodPeriods[req.Interval]
	if !ok {
		return nil, &models.ConfigurationError{Field: "interval", Value: req.Interval.String()}
	}

	from, to := c.dateRange(req)

	urlParams := url.Values{}
	urlParams.Set("period", period)
	urlParams.Set("order", "a")
	if !from.IsZero() {
		urlParams.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		urlParams.Set("to", to.Format("2006-01-02"))
	}

	symbol := c.symbol(ticker)

	var rows []eodBarResponse
	if err := c.get(ctx, fmt.Sprintf("/eod/%s", symbol), urlParams, &rows); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		bar := models.Bar{
			Date:   date,
			Open:   float64(row.Open),
			High:   float64(row.High),
			Low:    float64(row.Low),
			Close:  float64(row.Close),
			Volume: int64(row.Volume),
		}
		if adj := float64(row.AdjustedClose); adj != 0 && bar.Close != 0 && (req.AutoAdjust || req.BackAdjust) {
			ratio := adj / bar.Close
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			if req.AutoAdjust && !req.BackAdjust {
				bar.Close = adj
			}
		}
		if req.Rounding {
			bar.Open = round2(bar.Open)
			bar.High = round2(bar.High)
			bar.Low = round2(bar.Low)
			bar.Close = round2(bar.Close)
		}
		bars = append(bars, bar)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if req.Actions && len(bars) > 0 && req.Interval == models.IntervalDay {
		if err := c.attachActions(ctx, symbol, bars, urlParams); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Str("ticker", symbol).Int("bars", len(bars)).Msg("EODHD history fetched")

	return bars, nil
}

// attachActions fills dividends and split ratios on daily bars
func (c *Client) attachActions(ctx context.Context, symbol string, bars []models.Bar, rangeParams url.Values) error {
	params := func() url.Values {
		p := url.Values{}
		if v := rangeParams.Get("from"); v != "" {
			p.Set("from", v)
		}
		if v := rangeParams.Get("to"); v != "" {
			p.Set("to", v)
		}
		return p
	}

	byDate := make(map[time.Time]int, len(bars))
	for i, b := range bars {
		byDate[b.Date] = i
	}

	var divs []dividendResponse
	if err := c.get(ctx, fmt.Sprintf("/div/%s", symbol), params(), &divs); err != nil {
		return err
	}
	for _, d := range divs {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		if i, ok := byDate[date]; ok {
			bars[i].Dividends += float64(d.Value)
		}
	}

	var splits []splitResponse
	if err := c.get(ctx, fmt.Sprintf("/splits/%s", symbol), params(), &splits); err != nil {
		return err
	}
	for _, s := range splits {
		date, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			continue
		}
		if i, ok := byDate[date]; ok {
			bars[i].StockSplits = parseSplit(s.Split)
		}
	}
	return nil
}

// dateRange resolves the request to explicit from/to dates. A zero from
// means the full history.
func (c *Client) dateRange(req models.HistoryRequest) (time.Time, time.Time) {
	if !req.Start.IsZero() || !req.End.IsZero() {
		return req.Start, req.End
	}

	now := models.DayOf(c.now())
	switch req.Period {
	case "1d":
		return now.AddDate(0, 0, -1), now
	case "5d":
		return now.AddDate(0, 0, -5), now
	case "", "1mo":
		return now.AddDate(0, -1, 0), now
	case "3mo":
		return now.AddDate(0, -3, 0), now
	case "6mo":
		return now.AddDate(0, -6, 0), now
	case "1y":
		return now.AddDate(-1, 0, 0), now
	case "2y":
		return now.AddDate(-2, 0, 0), now
	case "5y":
		return now.AddDate(-5, 0, 0), now
	case "10y":
		return now.AddDate(-10, 0, 0), now
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), now
	}
	return time.Time{}, now
}

// parseSplit converts "2.000000/1.000000" to 2
func parseSplit(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
