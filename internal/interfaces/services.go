package interfaces

import (
	"context"

	"github.com/bobmcallan/vista/internal/models"
)

// ViewService derives the analytic views of a single ticker. Every method
// is memoized by its full argument list.
type ViewService interface {
	// History returns raw price history
	History(ctx context.Context, ticker string, params models.ViewParams) ([]models.Bar, error)

	// Indicators returns technical indicators aligned with History
	Indicators(ctx context.Context, ticker string, params models.ViewParams) ([]models.IndicatorRow, error)

	// Change returns the close-to-close change aligned with History
	Change(ctx context.Context, ticker string, params models.ViewParams) ([]models.ChangeRow, error)

	// ChangeHistogram bins the Change series
	ChangeHistogram(ctx context.Context, ticker string, params models.ViewParams, hist HistogramOptions) ([]models.HistogramBin, error)

	// News returns scored headlines, newest first
	News(ctx context.Context, ticker string) ([]models.NewsItem, error)

	// FinancialsSlopes returns the earliest-vs-latest quarterly statement table
	FinancialsSlopes(ctx context.Context, ticker string) ([]models.SlopeRow, error)

	// Financials returns the quarterly statement with incomplete periods removed
	Financials(ctx context.Context, ticker string) (*models.CleanStatement, error)

	// ActionsRecommendations returns history merged with allowed recommendation outcomes
	ActionsRecommendations(ctx context.Context, ticker string, params models.ViewParams, outcomes []string) ([]models.TimelineRow, error)

	// Recommendations returns the raw analyst rating changes
	Recommendations(ctx context.Context, ticker string) ([]models.RecommendationEvent, error)

	// InstitutionalHolders returns the largest institutional holders
	InstitutionalHolders(ctx context.Context, ticker string) ([]models.Holder, error)

	// Invalidate drops memoized views for one ticker
	Invalidate(ticker string) int

	// Purge drops every memoized view
	Purge() int
}

// HistogramOptions configures change histogram bins
type HistogramOptions struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	BinSize float64 `json:"bin_size"`
}
