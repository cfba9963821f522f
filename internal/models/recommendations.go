package models

import (
	"encoding/json"
	"time"
)

// RecommendationEvent is one analyst rating change
type RecommendationEvent struct {
	Date      time.Time `json:"date"`
	Firm      string    `json:"firm"`
	FromGrade string    `json:"from_grade"`
	ToGrade   string    `json:"to_grade"`
	Action    string    `json:"action"`
}

// Cell is a table cell that may be empty. Empty cells encode as "" rather
// than null, which is what the rendering layer expects.
type Cell struct {
	Value float64
	Valid bool
}

// NewCell returns a populated cell.
func NewCell(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// MarshalJSON encodes the value, or "" when empty.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte(`""`), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number or "".
func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == `""` || string(b) == "null" {
		*c = Cell{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = NewCell(v)
	return nil
}

// TimelineRow is one row of the price history merged with recommendation
// events. Price cells are empty on recommendation-only rows; recommendation
// fields are "" on price-only rows.
type TimelineRow struct {
	Date           time.Time `json:"Date"`
	Open           Cell      `json:"Open"`
	High           Cell      `json:"High"`
	Low            Cell      `json:"Low"`
	Close          Cell      `json:"Close"`
	Volume         Cell      `json:"Volume"`
	Dividends      Cell      `json:"Dividends"`
	StockSplits    Cell      `json:"Stock Splits"`
	Firm           string    `json:"Firm"`
	FromGrade      string    `json:"From Grade"`
	Recommendation string    `json:"Recommendation"`
	Action         string    `json:"Action"`
}
