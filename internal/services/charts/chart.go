// Package charts renders price history and indicators as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vista/internal/models"
)

// priceScale lists indicators drawn against the price axis. Everything
// else is an oscillator and goes on the secondary axis.
var priceScale = map[models.Indicator]bool{
	models.IndicatorBoll:      true,
	models.IndicatorBollUpper: true,
	models.IndicatorBollLower: true,
}

var palette = []string{
	"f97316", // orange-500
	"16a34a", // green-600
	"dc2626", // red-600
	"9333ea", // purple-600
	"0891b2", // cyan-600
	"ca8a04", // yellow-600
}

// RenderPriceChart renders a PNG line chart of the close price with the
// selected indicators. rows must be aligned with bars. Oscillators are
// plotted on a secondary axis; undefined indicator values are left out.
func RenderPriceChart(ticker string, bars []models.Bar, rows []models.IndicatorRow, selected []models.Indicator) ([]byte, error) {
	if len(bars) < 2 {
		return nil, &models.InvalidInputError{Index: -1, Reason: fmt.Sprintf("need at least 2 bars to chart, got %d", len(bars))}
	}
	if len(selected) > 0 && len(rows) != len(bars) {
		return nil, &models.InvalidInputError{Index: -1, Reason: "indicator rows are not aligned with history"}
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))
	for i, b := range bars {
		xValues[i] = b.Date
		closeY[i] = b.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: closeY,
		},
	}

	for n, ind := range selected {
		var xs []time.Time
		var ys []float64
		for i, row := range rows {
			if v := row.Values[ind]; v != nil {
				xs = append(xs, xValues[i])
				ys = append(ys, *v)
			}
		}
		if len(xs) < 2 {
			continue
		}

		style := chart.Style{
			StrokeColor: drawing.ColorFromHex(palette[n%len(palette)]),
			StrokeWidth: 1.5,
		}
		axis := chart.YAxisPrimary
		if !priceScale[ind] {
			axis = chart.YAxisSecondary
			style.StrokeDashArray = []float64{5.0, 3.0}
		}
		series = append(series, chart.TimeSeries{
			Name:    ind.String(),
			Style:   style,
			YAxis:   axis,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  ticker,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
