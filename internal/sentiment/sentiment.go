// Package sentiment groups scraped news rows by date and scores each
// headline with the VADER lexicon.
package sentiment

import (
	"strings"
	"sync"
	"time"

	"github.com/jonreiter/govader"

	"github.com/bobmcallan/vista/internal/models"
)

// DateLayout is the date token format used on the news listing page.
const DateLayout = "Jan-02-06"

// Scorer produces polarity scores for a piece of text.
type Scorer interface {
	Score(text string) models.Sentiment
}

// VADER scores text with the VADER lexicon and rules.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER creates a VADER scorer. The lexicon is loaded once per scorer.
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score implements Scorer
func (v *VADER) Score(text string) models.Sentiment {
	s := v.analyzer.PolarityScores(text)
	return models.Sentiment{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

var (
	defaultOnce   sync.Once
	defaultScorer *VADER
)

func vader() *VADER {
	defaultOnce.Do(func() {
		defaultScorer = NewVADER()
	})
	return defaultScorer
}

// ScoreNews scores rows with the shared VADER scorer.
func ScoreNews(rows []models.ScrapedRow) ([]models.NewsItem, error) {
	return ScoreNewsWith(vader(), rows)
}

// ScoreNewsWith groups rows by date and scores each headline.
//
// A row opens a new date group only when its date cell splits into exactly
// two whitespace-separated tokens ("Jan-05-24 09:30AM"). Any other row
// inherits the most recent date, so a malformed cell attaches to the prior
// day. An unparseable date token, or a row before any date has been seen,
// fails the whole call with a *models.DateParseError. Rows without a
// headline are skipped. Output keeps input order.
func ScoreNewsWith(scorer Scorer, rows []models.ScrapedRow) ([]models.NewsItem, error) {
	items := make([]models.NewsItem, 0, len(rows))

	var current time.Time
	seen := false
	for i, row := range rows {
		tokens := strings.Fields(row.DateCell)

		clock := ""
		if len(tokens) == 2 {
			d, err := time.Parse(DateLayout, tokens[0])
			if err != nil {
				return nil, &models.DateParseError{Row: i, Value: tokens[0], Err: err}
			}
			current = d
			seen = true
			clock = tokens[1]
		} else if len(tokens) > 0 {
			clock = tokens[len(tokens)-1]
		}

		headline := strings.TrimSpace(row.Headline)
		if headline == "" {
			continue
		}
		if !seen {
			return nil, &models.DateParseError{Row: i, Value: row.DateCell}
		}

		items = append(items, models.NewsItem{
			Date:      current,
			Time:      clock,
			Headline:  headline,
			URL:       row.URL,
			Sentiment: scorer.Score(headline),
		})
	}
	return items, nil
}
