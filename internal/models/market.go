// Package models defines data structures for Vista
package models

import (
	"time"
)

// Bar represents a single period of price history
type Bar struct {
	Date        time.Time `json:"date"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
	Dividends   float64   `json:"dividends"`
	StockSplits float64   `json:"stock_splits"`
}

// Holder is a single institutional holder of the ticker
type Holder struct {
	Holder       string    `json:"holder"`
	Shares       int64     `json:"shares"`
	DateReported time.Time `json:"date_reported"`
	PctHeld      float64   `json:"pct_held"`
	Value        float64   `json:"value"`
}

// DayOf returns the calendar day of t (in t's location) as UTC midnight.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RoundDay rounds t to the nearest calendar day, half-day rounding up.
func RoundDay(t time.Time) time.Time {
	u := t.UTC()
	day := DayOf(u)
	if u.Sub(day) >= 12*time.Hour {
		return day.AddDate(0, 0, 1)
	}
	return day
}

// Float returns a pointer to v, for optional numeric values.
func Float(v float64) *float64 {
	return &v
}
