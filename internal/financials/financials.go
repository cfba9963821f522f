// Package financials reshapes quarterly financial statements into the
// earliest-vs-latest "slopes" table and a cleaned period-major table.
package financials

import (
	"sort"

	"github.com/bobmcallan/vista/internal/models"
)

// periodOrder returns period indexes sorted chronologically. Ties keep
// source order.
func periodOrder(stmt *models.FinancialStatement) []int {
	order := make([]int, len(stmt.Periods))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stmt.Periods[order[a]].Before(stmt.Periods[order[b]])
	})
	return order
}

// Slopes returns one row per (period, metric) for the earliest and latest
// reported periods, labelled by year. Rows without a value are dropped.
// Despite the name no regression is fitted; the table pairs first and last
// values so they can be drawn as a line per metric.
func Slopes(stmt *models.FinancialStatement) []models.SlopeRow {
	if stmt == nil || len(stmt.Periods) == 0 {
		return []models.SlopeRow{}
	}

	order := periodOrder(stmt)
	retained := []int{order[0]}
	if len(order) > 1 {
		retained = append(retained, order[len(order)-1])
	}

	rows := make([]models.SlopeRow, 0, len(retained)*len(stmt.Metrics))
	for _, p := range retained {
		year := stmt.Periods[p].Year()
		for m, metric := range stmt.Metrics {
			v := stmt.Value(m, p)
			if v == nil {
				continue
			}
			rows = append(rows, models.SlopeRow{Date: year, Stat: metric, Value: *v})
		}
	}
	return rows
}

// Clean transposes the statement to one row per period, drops every period
// with a missing metric, and truncates period timestamps to the day.
func Clean(stmt *models.FinancialStatement) *models.CleanStatement {
	result := &models.CleanStatement{Rows: []models.CleanRow{}}
	if stmt == nil {
		result.Metrics = []string{}
		return result
	}
	result.Metrics = append([]string{}, stmt.Metrics...)

	for p, period := range stmt.Periods {
		values := make([]float64, len(stmt.Metrics))
		complete := true
		for m := range stmt.Metrics {
			v := stmt.Value(m, p)
			if v == nil {
				complete = false
				break
			}
			values[m] = *v
		}
		if !complete {
			continue
		}
		result.Rows = append(result.Rows, models.CleanRow{
			Period: models.DayOf(period),
			Values: values,
		})
	}
	return result
}
