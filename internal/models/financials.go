package models

import "time"

// FinancialStatement is a wide quarterly statement as reported by the data
// source: one row per metric, one column per period. Values[m][p] is metric
// m in period p; nil means not reported.
type FinancialStatement struct {
	Metrics []string     `json:"metrics"`
	Periods []time.Time  `json:"periods"`
	Values  [][]*float64 `json:"values"`
}

// Value returns metric m in period p, or nil when absent.
func (s *FinancialStatement) Value(m, p int) *float64 {
	if m >= len(s.Values) || p >= len(s.Values[m]) {
		return nil
	}
	return s.Values[m][p]
}

// SlopeRow is one long-form entry of the earliest-vs-latest table.
type SlopeRow struct {
	Date  int     `json:"Date"`
	Stat  string  `json:"Stat"`
	Value float64 `json:"Value"`
}

// CleanStatement is the period-major statement with incomplete periods removed.
type CleanStatement struct {
	Metrics []string   `json:"metrics"`
	Rows    []CleanRow `json:"rows"`
}

// CleanRow holds every metric for one period, in CleanStatement.Metrics order.
type CleanRow struct {
	Period time.Time `json:"period"`
	Values []float64 `json:"values"`
}
