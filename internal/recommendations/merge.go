// Package recommendations aligns analyst rating changes with price history.
package recommendations

import (
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/vista/internal/models"
)

// Default normalised outcomes
var DefaultOutcomes = []string{"Buy", "Sell", "Neutral"}

// Merger normalises raw grades to outcomes and merges events into history.
type Merger struct {
	grades map[string]string
}

// NewMerger creates a merger with a raw-grade to outcome mapping. Grades
// missing from the mapping are their own outcome. Lookup ignores case.
func NewMerger(grades map[string]string) *Merger {
	m := &Merger{grades: make(map[string]string, len(grades))}
	for raw, outcome := range grades {
		m.grades[strings.ToLower(strings.TrimSpace(raw))] = outcome
	}
	return m
}

// Outcome returns the normalised outcome for a raw grade.
func (m *Merger) Outcome(grade string) string {
	if outcome, ok := m.grades[strings.ToLower(strings.TrimSpace(grade))]; ok {
		return outcome
	}
	return grade
}

// Normalize returns copies of events with ToGrade replaced by its outcome
// under grades.
func Normalize(events []models.RecommendationEvent, grades map[string]string) []models.RecommendationEvent {
	m := NewMerger(grades)
	out := make([]models.RecommendationEvent, len(events))
	for i, e := range events {
		e.ToGrade = m.Outcome(e.ToGrade)
		out[i] = e
	}
	return out
}

// Merge is Merger.Merge with raw grades used as outcomes.
func Merge(bars []models.Bar, events []models.RecommendationEvent, allowed []string) []models.TimelineRow {
	return NewMerger(nil).Merge(bars, events, allowed)
}

type dayEvent struct {
	day            time.Time
	event          models.RecommendationEvent
	recommendation string
}

// Merge performs an ordered outer merge of history and recommendation
// events keyed on the day. Every bar is kept. Events on a bar's day are
// attached to that bar, one row per event; other events become standalone
// rows placed in date order. Only events whose outcome is in allowed are
// used. Cells that have no source value are left empty.
func (m *Merger) Merge(bars []models.Bar, events []models.RecommendationEvent, allowed []string) []models.TimelineRow {
	allow := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allow[a] = true
	}

	kept := make([]dayEvent, 0, len(events))
	for _, e := range events {
		outcome := m.Outcome(e.ToGrade)
		if !allow[outcome] {
			continue
		}
		kept = append(kept, dayEvent{day: models.RoundDay(e.Date), event: e, recommendation: outcome})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].day.Before(kept[j].day)
	})

	rows := make([]models.TimelineRow, 0, len(bars)+len(kept))
	next := 0
	for _, b := range bars {
		day := models.DayOf(b.Date)

		for next < len(kept) && kept[next].day.Before(day) {
			rows = append(rows, eventRow(kept[next]))
			next++
		}

		attached := false
		for next < len(kept) && kept[next].day.Equal(day) {
			row := barRow(b, day)
			fillEvent(&row, kept[next])
			rows = append(rows, row)
			next++
			attached = true
		}
		if !attached {
			rows = append(rows, barRow(b, day))
		}
	}
	for ; next < len(kept); next++ {
		rows = append(rows, eventRow(kept[next]))
	}
	return rows
}

func barRow(b models.Bar, day time.Time) models.TimelineRow {
	return models.TimelineRow{
		Date:        day,
		Open:        models.NewCell(b.Open),
		High:        models.NewCell(b.High),
		Low:         models.NewCell(b.Low),
		Close:       models.NewCell(b.Close),
		Volume:      models.NewCell(float64(b.Volume)),
		Dividends:   models.NewCell(b.Dividends),
		StockSplits: models.NewCell(b.StockSplits),
	}
}

func eventRow(e dayEvent) models.TimelineRow {
	row := models.TimelineRow{Date: e.day}
	fillEvent(&row, e)
	return row
}

func fillEvent(row *models.TimelineRow, e dayEvent) {
	row.Firm = e.event.Firm
	row.FromGrade = e.event.FromGrade
	row.Recommendation = e.recommendation
	row.Action = e.event.Action
}
