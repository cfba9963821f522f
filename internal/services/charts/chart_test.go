package charts

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vista/internal/models"
	"github.com/bobmcallan/vista/internal/signals"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func trendBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i%7) + float64(i)*0.5
		bars[i] = models.Bar{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestRenderPriceChart_ValidPNG(t *testing.T) {
	bars := trendBars(40)
	rows, err := signals.ComputeIndicators(bars)
	require.NoError(t, err)

	png, err := RenderPriceChart("MSFT", bars, rows, []models.Indicator{
		models.IndicatorBoll, models.IndicatorBollUpper, models.IndicatorRSI6,
	})
	require.NoError(t, err)

	require.Greater(t, len(png), 1000)
	assert.True(t, bytes.HasPrefix(png, pngHeader), "not a valid PNG")
}

func TestRenderPriceChart_CloseOnly(t *testing.T) {
	png, err := RenderPriceChart("MSFT", trendBars(5), nil, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader))
}

func TestRenderPriceChart_TooFewBars(t *testing.T) {
	_, err := RenderPriceChart("MSFT", trendBars(1), nil, nil)

	var invalid *models.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestRenderPriceChart_MisalignedRows(t *testing.T) {
	bars := trendBars(10)
	rows, err := signals.ComputeIndicators(bars[:5])
	require.NoError(t, err)

	_, err = RenderPriceChart("MSFT", bars, rows, []models.Indicator{models.IndicatorRSI6})

	var invalid *models.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}
