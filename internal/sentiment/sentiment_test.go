package sentiment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vista/internal/models"
)

type fixedScorer struct {
	calls []string
}

func (f *fixedScorer) Score(text string) models.Sentiment {
	f.calls = append(f.calls, text)
	return models.Sentiment{Neutral: 1}
}

func TestScoreNews_InheritsDate(t *testing.T) {
	scorer := &fixedScorer{}
	rows := []models.ScrapedRow{
		{DateCell: "Jan-05-24 09:30AM", Headline: "Company beats estimates"},
		{DateCell: "08:15AM", Headline: "Shares climb premarket"},
	}

	items, err := ScoreNewsWith(scorer, rows)
	require.NoError(t, err)
	require.Len(t, items, 2)

	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, items[0].Date.Equal(want))
	assert.True(t, items[1].Date.Equal(want))
	assert.Equal(t, "09:30AM", items[0].Time)
	assert.Equal(t, "08:15AM", items[1].Time)
	assert.Equal(t, []string{"Company beats estimates", "Shares climb premarket"}, scorer.calls)
}

func TestScoreNews_NewGroupPerDate(t *testing.T) {
	rows := []models.ScrapedRow{
		{DateCell: "Mar-02-24 10:00AM", Headline: "a"},
		{DateCell: "09:00AM", Headline: "b"},
		{DateCell: "Mar-01-24 04:00PM", Headline: "c"},
	}

	items, err := ScoreNewsWith(&fixedScorer{}, rows)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 2, items[1].Date.Day())
	assert.Equal(t, 1, items[2].Date.Day())
	assert.Equal(t, "c", items[2].Headline)
}

func TestScoreNews_MalformedCellAttachesToPriorDate(t *testing.T) {
	rows := []models.ScrapedRow{
		{DateCell: "Mar-02-24 10:00AM", Headline: "a"},
		{DateCell: "Mar-01-24 04:00 PM", Headline: "b"},
	}

	items, err := ScoreNewsWith(&fixedScorer{}, rows)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].Date.Day())
}

func TestScoreNews_UnparseableDate(t *testing.T) {
	scorer := &fixedScorer{}
	rows := []models.ScrapedRow{
		{DateCell: "Jan-05-24 09:30AM", Headline: "fine"},
		{DateCell: "Today 10:00AM", Headline: "broken"},
	}

	items, err := ScoreNewsWith(scorer, rows)

	assert.Nil(t, items)
	var dateErr *models.DateParseError
	require.True(t, errors.As(err, &dateErr))
	assert.Equal(t, 1, dateErr.Row)
	assert.Equal(t, "Today", dateErr.Value)
}

func TestScoreNews_NoDateBeforeFirstRow(t *testing.T) {
	rows := []models.ScrapedRow{
		{DateCell: "09:30AM", Headline: "orphan"},
	}

	_, err := ScoreNewsWith(&fixedScorer{}, rows)

	var dateErr *models.DateParseError
	assert.True(t, errors.As(err, &dateErr))
}

func TestScoreNews_SkipsEmptyHeadlines(t *testing.T) {
	rows := []models.ScrapedRow{
		{DateCell: "Jan-05-24 09:30AM", Headline: "  "},
		{DateCell: "09:00AM", Headline: "kept"},
	}

	items, err := ScoreNewsWith(&fixedScorer{}, rows)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Headline)
	assert.Equal(t, 5, items[0].Date.Day())
}

func TestScoreNews_Empty(t *testing.T) {
	items, err := ScoreNews(nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVADER_Polarity(t *testing.T) {
	v := NewVADER()

	tests := []struct {
		name     string
		text     string
		positive bool
	}{
		{"positive", "Great quarter, record profits and excellent growth", true},
		{"negative", "Terrible losses and a disastrous outlook", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := v.Score(tt.text)
			if tt.positive {
				assert.Greater(t, s.Compound, 0.0)
			} else {
				assert.Less(t, s.Compound, 0.0)
			}
			assert.InDelta(t, 1.0, s.Negative+s.Neutral+s.Positive, 0.01)
			assert.GreaterOrEqual(t, s.Compound, -1.0)
			assert.LessOrEqual(t, s.Compound, 1.0)
		})
	}
}
