package models

import (
	"fmt"
	"time"
)

// Default history request values
const (
	DefaultPeriod   = "1mo"
	DefaultInterval = "1 day"
)

// ViewParams selects the price history a derived view is computed from.
// When Start or End is set the data source uses the date range and Period
// is ignored.
type ViewParams struct {
	Period     string    `json:"period" validate:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval   string    `json:"interval" validate:"required"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Prepost    bool      `json:"prepost"`
	Actions    bool      `json:"actions"`
	AutoAdjust bool      `json:"auto_adjust"`
	BackAdjust bool      `json:"back_adjust"`
	Rounding   bool      `json:"rounding"`
}

// DefaultViewParams returns the parameters used when a caller sets nothing.
func DefaultViewParams() ViewParams {
	return ViewParams{
		Period:     DefaultPeriod,
		Interval:   DefaultInterval,
		Actions:    true,
		AutoAdjust: true,
	}
}

func dayKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// HistoryRequest is what a MarketDataSource receives: ViewParams with the
// interval resolved to a source code.
type HistoryRequest struct {
	Interval   Interval
	Period     string
	Start      time.Time
	End        time.Time
	Prepost    bool
	Actions    bool
	AutoAdjust bool
	BackAdjust bool
	Rounding   bool
}

// Key returns a normalised, comparable form of the request for use as a
// cache key. The interval is its resolved source code and dates are reduced
// to days, so equivalent ViewParams share one key.
func (r HistoryRequest) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%t|%t|%t|%t|%t",
		r.Period, r.Interval.Code(), dayKey(r.Start), dayKey(r.End),
		r.Prepost, r.Actions, r.AutoAdjust, r.BackAdjust, r.Rounding)
}
