package signals

import (
	"fmt"
	"math"

	"github.com/bobmcallan/vista/internal/models"
)

// Lookback windows, taken from the indicator names
const (
	kdjPeriod      = 9
	bollPeriod     = 20
	bollWidth      = 2.0
	dmaShort       = 10
	dmaLong        = 50
	trixPeriod     = 12
	cciPeriod      = 14
	cci20Period    = 20
	rsiShortPeriod = 6
	rsiLongPeriod  = 12
	wrShortPeriod  = 6
	wrLongPeriod   = 10
)

// ValidateHistory checks that bars are strictly ascending by date and carry
// finite prices.
func ValidateHistory(bars []models.Bar) error {
	for i, b := range bars {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
			if !isFinite(v) {
				return &models.InvalidInputError{Index: i, Reason: "non-finite price"}
			}
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1].Date
		if b.Date.Equal(prev) {
			return &models.InvalidInputError{Index: i, Reason: fmt.Sprintf("duplicate date %s", b.Date.Format("2006-01-02"))}
		}
		if b.Date.Before(prev) {
			return &models.InvalidInputError{Index: i, Reason: fmt.Sprintf("date %s before %s", b.Date.Format("2006-01-02"), prev.Format("2006-01-02"))}
		}
	}
	return nil
}

// ComputeIndicators calculates every indicator for each bar. The result has
// one row per bar with the same dates.
func ComputeIndicators(bars []models.Bar) ([]models.IndicatorRow, error) {
	return ComputeSelected(bars, models.Indicators()...)
}

// ComputeSelected calculates only the given indicators.
func ComputeSelected(bars []models.Bar, indicators ...models.Indicator) ([]models.IndicatorRow, error) {
	if err := ValidateHistory(bars); err != nil {
		return nil, err
	}

	columns := make(map[models.Indicator][]float64, len(indicators))
	for _, ind := range indicators {
		if _, done := columns[ind]; done {
			continue
		}
		col, err := compute(ind, bars)
		if err != nil {
			return nil, err
		}
		columns[ind] = col
	}

	rows := make([]models.IndicatorRow, len(bars))
	for i, b := range bars {
		values := make(map[models.Indicator]*float64, len(columns))
		for ind, col := range columns {
			values[ind] = defined(col[i])
		}
		rows[i] = models.IndicatorRow{Date: b.Date, Values: values}
	}
	return rows, nil
}

// compute dispatches one indicator to its formula.
func compute(ind models.Indicator, bars []models.Bar) ([]float64, error) {
	switch ind {
	case models.IndicatorKDJ:
		return KDJ(bars, kdjPeriod), nil
	case models.IndicatorBoll:
		mid, _, _ := Bollinger(closes(bars), bollPeriod, bollWidth)
		return mid, nil
	case models.IndicatorBollUpper:
		_, upper, _ := Bollinger(closes(bars), bollPeriod, bollWidth)
		return upper, nil
	case models.IndicatorBollLower:
		_, _, lower := Bollinger(closes(bars), bollPeriod, bollWidth)
		return lower, nil
	case models.IndicatorDMA:
		return DMA(closes(bars), dmaShort, dmaLong), nil
	case models.IndicatorTRIX:
		return TRIX(closes(bars), trixPeriod), nil
	case models.IndicatorCCI:
		return CCI(bars, cciPeriod), nil
	case models.IndicatorCCI20:
		return CCI(bars, cci20Period), nil
	case models.IndicatorRSI6:
		return RSI(closes(bars), rsiShortPeriod), nil
	case models.IndicatorRSI12:
		return RSI(closes(bars), rsiLongPeriod), nil
	case models.IndicatorWR6:
		return WilliamsR(bars, wrShortPeriod), nil
	case models.IndicatorWR10:
		return WilliamsR(bars, wrLongPeriod), nil
	}
	return nil, &models.ConfigurationError{Field: "indicator", Value: ind.String()}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func defined(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return models.Float(v)
}

// Change calculates close[i] - close[i-1] for each bar. The first row is
// undefined.
func Change(bars []models.Bar) ([]models.ChangeRow, error) {
	if err := ValidateHistory(bars); err != nil {
		return nil, err
	}
	rows := make([]models.ChangeRow, len(bars))
	for i, b := range bars {
		rows[i] = models.ChangeRow{Date: b.Date}
		if i > 0 {
			rows[i].Change = models.Float(b.Close - bars[i-1].Close)
		}
	}
	return rows, nil
}

// MaxHistogramEdges bounds the number of bin edges ChangeHistogram will
// allocate.
const MaxHistogramEdges = 10000

// ChangeHistogram counts defined changes into bins of binSize starting at
// min. Bin edges are rounded to two decimals; every bin is half-open except
// the last, which includes its upper edge.
func ChangeHistogram(rows []models.ChangeRow, min, max, binSize float64) ([]models.HistogramBin, error) {
	if !isFinite(min) || !isFinite(max) || !isFinite(binSize) {
		return nil, &models.InvalidInputError{Index: -1, Reason: "histogram bounds and bin size must be finite"}
	}
	if binSize <= 0 {
		return nil, &models.InvalidInputError{Index: -1, Reason: "bin size must be positive"}
	}
	if !(max > min) {
		return nil, &models.InvalidInputError{Index: -1, Reason: "histogram max must exceed min"}
	}

	span := math.Ceil((max - min) / binSize)
	if span > MaxHistogramEdges {
		return nil, &models.InvalidInputError{Index: -1, Reason: fmt.Sprintf("histogram would need more than %d bin edges", MaxHistogramEdges)}
	}
	n := int(span)
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = math.Round((min+float64(i)*binSize)*100) / 100
	}
	if len(edges) < 2 {
		return nil, &models.InvalidInputError{Index: -1, Reason: "histogram needs at least two bin edges"}
	}

	bins := make([]models.HistogramBin, len(edges)-1)
	for i := range bins {
		bins[i].Lower = edges[i]
	}

	last := edges[len(edges)-1]
	for _, r := range rows {
		if r.Change == nil {
			continue
		}
		v := *r.Change
		if v < edges[0] || v > last {
			continue
		}
		if v == last {
			bins[len(bins)-1].Count++
			continue
		}
		for i := range bins {
			if v >= edges[i] && v < edges[i+1] {
				bins[i].Count++
				break
			}
		}
	}
	return bins, nil
}
