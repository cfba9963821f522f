package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/vista/internal/models"
)

// GetHistory retrieves price history with dividend and split events.
// Bars are dated by their calendar day on the exchange and returned in
// ascending order.
func (c *Client) GetHistory(ctx context.Context, ticker string, req models.HistoryRequest) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("interval", req.Interval.Code())
	if !req.Start.IsZero() || !req.End.IsZero() {
		start := req.Start
		end := req.End
		if end.IsZero() {
			end = time.Now()
		}
		params.Set("period1", strconv.FormatInt(start.Unix(), 10))
		// period2 is exclusive
		params.Set("period2", strconv.FormatInt(models.DayOf(end).AddDate(0, 0, 1).Unix(), 10))
	} else {
		period := req.Period
		if period == "" {
			period = models.DefaultPeriod
		}
		params.Set("range", period)
	}
	params.Set("includePrePost", strconv.FormatBool(req.Prepost))
	params.Set("events", "div|split")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, &APIError{StatusCode: 200, Message: resp.Chart.Error.Description, Endpoint: path}
	}
	if len(resp.Chart.Result) == 0 {
		return []models.Bar{}, nil
	}

	bars := convertChart(resp.Chart.Result[0], req)

	c.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Yahoo history fetched")

	return bars, nil
}

// convertChart turns the columnar chart payload into bars, skipping
// timestamps with no close.
func convertChart(result chartResult, req models.HistoryRequest) []models.Bar {
	bars := make([]models.Bar, 0, len(result.Timestamp))
	if len(result.Indicators.Quote) == 0 {
		return bars
	}
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}
	dayOf := func(ts int64) time.Time {
		return models.DayOf(time.Unix(ts, 0).In(loc))
	}

	dividends := make(map[time.Time]float64, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends[dayOf(d.Date)] += d.Amount
	}
	splits := make(map[time.Time]float64, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		if s.Denominator != 0 {
			splits[dayOf(s.Date)] = s.Numerator / s.Denominator
		}
	}

	for i, ts := range result.Timestamp {
		closePrice := at(quote.Close, i)
		if closePrice == nil {
			continue
		}
		bar := models.Bar{
			Date:   dayOf(ts),
			Open:   value(quote.Open, i),
			High:   value(quote.High, i),
			Low:    value(quote.Low, i),
			Close:  *closePrice,
			Volume: int64(value(quote.Volume, i)),
		}
		if req.Actions {
			bar.Dividends = dividends[bar.Date]
			bar.StockSplits = splits[bar.Date]
		}

		if adj := at(adjClose, i); adj != nil && bar.Close != 0 && (req.AutoAdjust || req.BackAdjust) {
			ratio := *adj / bar.Close
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			if req.AutoAdjust && !req.BackAdjust {
				bar.Close = *adj
			}
		}

		if req.Rounding {
			bar.Open = round2(bar.Open)
			bar.High = round2(bar.High)
			bar.Low = round2(bar.Low)
			bar.Close = round2(bar.Close)
		}

		// several timestamps can land on one day with prepost data; keep the last
		if n := len(bars); n > 0 && bars[n-1].Date.Equal(bar.Date) {
			bars[n-1] = bar
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func at(series []*float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	return series[i]
}

func value(series []*float64, i int) float64 {
	if v := at(series, i); v != nil {
		return *v
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
