package models

import (
	"strings"
	"time"
)

// Indicator names one technical indicator column. The set is closed; each
// case is computed by its own function in the signals package.
type Indicator int

const (
	IndicatorKDJ Indicator = iota
	IndicatorBoll
	IndicatorBollUpper
	IndicatorBollLower
	IndicatorDMA
	IndicatorTRIX
	IndicatorCCI
	IndicatorRSI6
	IndicatorRSI12
	IndicatorWR10
	IndicatorWR6
	IndicatorCCI20
)

var indicatorNames = [...]string{
	IndicatorKDJ:       "KDJ",
	IndicatorBoll:      "Bolling",
	IndicatorBollUpper: "Bolling Upper Band",
	IndicatorBollLower: "Bolling Lower Band",
	IndicatorDMA:       "DMA",
	IndicatorTRIX:      "TRIX",
	IndicatorCCI:       "CCI",
	IndicatorRSI6:      "6 days RSI",
	IndicatorRSI12:     "12 days RSI",
	IndicatorWR10:      "10 days WR",
	IndicatorWR6:       "6 days WR",
	IndicatorCCI20:     "20 days CCI",
}

// Indicators returns every indicator in display order.
func Indicators() []Indicator {
	all := make([]Indicator, len(indicatorNames))
	for i := range indicatorNames {
		all[i] = Indicator(i)
	}
	return all
}

// ParseIndicator resolves a display name. Matching ignores case and
// surrounding whitespace.
func ParseIndicator(name string) (Indicator, error) {
	name = strings.TrimSpace(name)
	for i, n := range indicatorNames {
		if strings.EqualFold(n, name) {
			return Indicator(i), nil
		}
	}
	return 0, &ConfigurationError{Field: "indicator", Value: name}
}

func (i Indicator) String() string {
	if i < 0 || int(i) >= len(indicatorNames) {
		return "unknown"
	}
	return indicatorNames[i]
}

// MarshalText encodes the indicator as its display name, which also makes
// it usable as a JSON object key.
func (i Indicator) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes a display name.
func (i *Indicator) UnmarshalText(b []byte) error {
	v, err := ParseIndicator(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// IndicatorRow holds the indicator values for one history row. A nil value
// means the indicator is undefined for that row.
type IndicatorRow struct {
	Date   time.Time              `json:"date"`
	Values map[Indicator]*float64 `json:"values"`
}

// ChangeRow holds the close-to-close change for one history row.
type ChangeRow struct {
	Date   time.Time `json:"date"`
	Change *float64  `json:"change"`
}

// HistogramBin counts change values falling in [Lower, Lower+bin size).
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Count int     `json:"count"`
}
