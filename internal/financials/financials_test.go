package financials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vista/internal/models"
)

func quarter(year int, month time.Month) time.Time {
	return time.Date(year, month, 30, 14, 30, 0, 0, time.UTC)
}

// statement mirrors the usual source layout: newest period first.
func statement() *models.FinancialStatement {
	return &models.FinancialStatement{
		Metrics: []string{"Revenue", "Net Income"},
		Periods: []time.Time{quarter(2022, 9), quarter(2021, 9), quarter(2020, 9)},
		Values: [][]*float64{
			{models.Float(300), models.Float(200), models.Float(100)},
			{models.Float(30), models.Float(20), nil},
		},
	}
}

func TestSlopes_KeepsEarliestAndLatest(t *testing.T) {
	rows := Slopes(statement())

	assert.Equal(t, []models.SlopeRow{
		{Date: 2020, Stat: "Revenue", Value: 100},
		{Date: 2022, Stat: "Revenue", Value: 300},
		{Date: 2022, Stat: "Net Income", Value: 30},
	}, rows)
}

func TestSlopes_NoRowFromMiddlePeriod(t *testing.T) {
	for _, row := range Slopes(statement()) {
		assert.NotEqual(t, 2021, row.Date)
	}
}

func TestSlopes_SinglePeriod(t *testing.T) {
	stmt := &models.FinancialStatement{
		Metrics: []string{"Revenue"},
		Periods: []time.Time{quarter(2023, 3)},
		Values:  [][]*float64{{models.Float(42)}},
	}

	rows := Slopes(stmt)
	assert.Equal(t, []models.SlopeRow{{Date: 2023, Stat: "Revenue", Value: 42}}, rows)
}

func TestSlopes_Empty(t *testing.T) {
	assert.Empty(t, Slopes(nil))
	assert.Empty(t, Slopes(&models.FinancialStatement{}))
}

func TestClean_DropsIncompletePeriods(t *testing.T) {
	clean := Clean(statement())

	assert.Equal(t, []string{"Revenue", "Net Income"}, clean.Metrics)
	require.Len(t, clean.Rows, 2)
	assert.Equal(t, time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), clean.Rows[0].Period)
	assert.Equal(t, []float64{300, 30}, clean.Rows[0].Values)
	assert.Equal(t, time.Date(2021, 9, 30, 0, 0, 0, 0, time.UTC), clean.Rows[1].Period)
}

func TestClean_Empty(t *testing.T) {
	clean := Clean(nil)
	assert.Empty(t, clean.Rows)
	assert.Empty(t, clean.Metrics)
}
