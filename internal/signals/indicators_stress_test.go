package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vista/internal/models"
)

// === Series edge cases ===

func TestSMA_Empty(t *testing.T) {
	assert.Empty(t, SMA(nil, 5))
	assert.Empty(t, SMA([]float64{}, 5))
}

func TestSMA_PeriodLongerThanSeries(t *testing.T) {
	for _, v := range SMA([]float64{1, 2, 3}, 4) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestSMA_NonPositivePeriod(t *testing.T) {
	for _, period := range []int{0, -3} {
		for _, v := range SMA([]float64{1, 2, 3}, period) {
			assert.True(t, math.IsNaN(v), "period %d", period)
		}
	}
}

func TestEMA_SkipsLeadingNaN(t *testing.T) {
	got := EMA([]float64{math.NaN(), 1, 2, 3}, 2)

	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 1.5, got[2], 1e-9)
	assert.InDelta(t, 2.5, got[3], 1e-9)
}

func TestEMA_PeriodOne(t *testing.T) {
	values := []float64{4, 8, 6}
	assert.Equal(t, values, EMA(values, 1))
}

func TestRSI_OnlyGains(t *testing.T) {
	got := RSI([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 6)
	assert.Equal(t, 100.0, got[6])
	assert.Equal(t, 100.0, got[7])
}

func TestRSI_FlatIsNeutral(t *testing.T) {
	got := RSI([]float64{5, 5, 5, 5, 5, 5, 5, 5}, 6)
	assert.Equal(t, 50.0, got[7])
}

func TestRSI_TooShort(t *testing.T) {
	for _, v := range RSI([]float64{1, 2, 3}, 6) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestTRIX_ConstantSeriesIsZero(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42
	}
	got := TRIX(values, 12)

	assert.True(t, math.IsNaN(got[33]), "needs two seeded triple EMA values")
	assert.InDelta(t, 0, got[34], 1e-12)
	assert.InDelta(t, 0, got[59], 1e-12)
}

// === Bar-based edge cases ===

func constBars(n int, price float64) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		}
	}
	return bars
}

func TestFlatWindow(t *testing.T) {
	bars := constBars(30, 10)

	k := KDJ(bars, 9)
	assert.InDelta(t, 50, k[29], 1e-9, "RSV of a flat window is 50")

	for _, v := range WilliamsR(bars, 10) {
		assert.True(t, math.IsNaN(v), "WR undefined when high == low")
	}
	for _, v := range CCI(bars, 20) {
		assert.True(t, math.IsNaN(v), "CCI undefined when mean deviation is 0")
	}

	mid, upper, lower := Bollinger(closes(bars), 20, 2)
	assert.Equal(t, 10.0, mid[29])
	assert.Equal(t, 10.0, upper[29])
	assert.Equal(t, 10.0, lower[29])
}

func TestWilliamsR_CloseAtHigh(t *testing.T) {
	bars := constBars(6, 10)
	bars[0].Low = 5
	bars[5].High = 12
	bars[5].Close = 12

	got := WilliamsR(bars, 6)
	assert.InDelta(t, 0, got[5], 1e-9)
}

func TestComputeIndicators_SingleBar(t *testing.T) {
	rows, err := ComputeIndicators(constBars(1, 10))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	for ind, v := range rows[0].Values {
		assert.Nil(t, v, "%s should be undefined for one bar", ind)
	}
}

func TestComputeIndicators_NonFinitePrice(t *testing.T) {
	bars := constBars(5, 10)
	bars[3].Close = math.Inf(1)

	_, err := ComputeIndicators(bars)

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 3, invalid.Index)
}

func TestComputeIndicators_LongHistoryHasNoNaN(t *testing.T) {
	n := 5000
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + 20*math.Sin(float64(i)/15) + float64(i%3)
		bars[i] = models.Bar{
			Date:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  c,
			High:  c + 1.5,
			Low:   c - 1.5,
			Close: c,
		}
	}

	rows, err := ComputeIndicators(bars)
	require.NoError(t, err)
	require.Len(t, rows, n)

	last := rows[n-1]
	assert.Len(t, last.Values, len(models.Indicators()))
	for ind, v := range last.Values {
		require.NotNil(t, v, "%s undefined on last row", ind)
		assert.False(t, math.IsNaN(*v) || math.IsInf(*v, 0), "%s not finite", ind)
	}
}
