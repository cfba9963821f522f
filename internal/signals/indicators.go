// Package signals provides technical indicator calculations
package signals

import (
	"math"

	"github.com/bobmcallan/vista/internal/models"
)

// Series functions work on ascending values and return a slice of the same
// length. NaN marks positions where the lookback window is not yet full.

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func typicalPrices(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low + b.Close) / 3
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// window returns values[i-period+1 : i+1], or nil when the window is not
// full or contains an undefined value.
func window(values []float64, i, period int) []float64 {
	if period <= 0 || i+1 < period {
		return nil
	}
	w := values[i-period+1 : i+1]
	for _, v := range w {
		if math.IsNaN(v) {
			return nil
		}
	}
	return w
}

func mean(w []float64) float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// SMA calculates Simple Moving Average for the given period
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	for i := range values {
		if w := window(values, i, period); w != nil {
			out[i] = mean(w)
		}
	}
	return out
}

// StdDev calculates the rolling population standard deviation
func StdDev(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	for i := range values {
		w := window(values, i, period)
		if w == nil {
			continue
		}
		m := mean(w)
		sq := 0.0
		for _, v := range w {
			sq += (v - m) * (v - m)
		}
		out[i] = math.Sqrt(sq / float64(period))
	}
	return out
}

// MeanDeviation calculates the rolling mean absolute deviation from the SMA
func MeanDeviation(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	for i := range values {
		w := window(values, i, period)
		if w == nil {
			continue
		}
		m := mean(w)
		dev := 0.0
		for _, v := range w {
			dev += math.Abs(v - m)
		}
		out[i] = dev / float64(period)
	}
	return out
}

// EMA calculates Exponential Moving Average for the given period.
// Leading undefined values are skipped; the average is seeded with the SMA
// of the first full window.
func EMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	start := 0
	for start < len(values) && math.IsNaN(values[start]) {
		start++
	}
	seed := start + period - 1
	if seed >= len(values) {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	ema := mean(values[start : seed+1])
	out[seed] = ema
	for i := seed + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}

// highestHigh and lowestLow return the rolling extremes of the bar range
func highestHigh(bars []models.Bar, i, period int) float64 {
	high := math.Inf(-1)
	for j := i - period + 1; j <= i; j++ {
		high = math.Max(high, bars[j].High)
	}
	return high
}

func lowestLow(bars []models.Bar, i, period int) float64 {
	low := math.Inf(1)
	for j := i - period + 1; j <= i; j++ {
		low = math.Min(low, bars[j].Low)
	}
	return low
}

// RSI calculates Relative Strength Index with Wilder smoothing
func RSI(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// KDJ calculates the stochastic K line. K starts at 50 and is smoothed
// with weight 1/3 on each new RSV.
func KDJ(bars []models.Bar, period int) []float64 {
	out := nanSeries(len(bars))
	k := 50.0
	for i := range bars {
		if i+1 < period {
			continue
		}
		high := highestHigh(bars, i, period)
		low := lowestLow(bars, i, period)
		rsv := 50.0
		if high != low {
			rsv = (bars[i].Close - low) / (high - low) * 100
		}
		k = 2.0/3.0*k + 1.0/3.0*rsv
		out[i] = k
	}
	return out
}

// Bollinger calculates the middle, upper and lower Bollinger bands
func Bollinger(values []float64, period int, width float64) (mid, upper, lower []float64) {
	mid = SMA(values, period)
	std := StdDev(values, period)
	upper = nanSeries(len(values))
	lower = nanSeries(len(values))
	for i := range values {
		if math.IsNaN(mid[i]) {
			continue
		}
		upper[i] = mid[i] + width*std[i]
		lower[i] = mid[i] - width*std[i]
	}
	return mid, upper, lower
}

// DMA calculates the difference between a short and long SMA
func DMA(values []float64, short, long int) []float64 {
	s := SMA(values, short)
	l := SMA(values, long)
	out := nanSeries(len(values))
	for i := range values {
		out[i] = s[i] - l[i]
	}
	return out
}

// TRIX calculates the one-period percent rate of change of a triple EMA
func TRIX(values []float64, period int) []float64 {
	triple := EMA(EMA(EMA(values, period), period), period)
	out := nanSeries(len(values))
	for i := 1; i < len(values); i++ {
		prev := triple[i-1]
		if math.IsNaN(prev) || math.IsNaN(triple[i]) || prev == 0 {
			continue
		}
		out[i] = (triple[i] - prev) / prev * 100
	}
	return out
}

// CCI calculates Commodity Channel Index over typical prices
func CCI(bars []models.Bar, period int) []float64 {
	tp := typicalPrices(bars)
	sma := SMA(tp, period)
	md := MeanDeviation(tp, period)
	out := nanSeries(len(bars))
	for i := range bars {
		if math.IsNaN(sma[i]) || md[i] == 0 {
			continue
		}
		out[i] = (tp[i] - sma[i]) / (0.015 * md[i])
	}
	return out
}

// WilliamsR calculates Williams %R in the range [-100, 0]
func WilliamsR(bars []models.Bar, period int) []float64 {
	out := nanSeries(len(bars))
	for i := range bars {
		if period <= 0 || i+1 < period {
			continue
		}
		high := highestHigh(bars, i, period)
		low := lowestLow(bars, i, period)
		if high == low {
			continue
		}
		out[i] = (high - bars[i].Close) / (high - low) * -100
	}
	return out
}
