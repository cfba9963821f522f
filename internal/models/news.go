package models

import "time"

// ScrapedRow is one raw row of a news listing page. DateCell is the full
// text of the date column, which carries either "Mon-DD-YY HH:MMPM" or just
// the time for later headlines on the same day.
type ScrapedRow struct {
	DateCell string `json:"date_cell"`
	Headline string `json:"headline"`
	URL      string `json:"url,omitempty"`
}

// Sentiment holds lexicon-based polarity scores. Negative, Neutral and
// Positive are proportions in [0,1]; Compound is normalised to [-1,1].
type Sentiment struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
	Compound float64 `json:"compound"`
}

// NewsItem is a scored headline
type NewsItem struct {
	Date      time.Time `json:"date"`
	Time      string    `json:"time,omitempty"`
	Headline  string    `json:"headline"`
	URL       string    `json:"url,omitempty"`
	Sentiment Sentiment `json:"sentiment"`
}
