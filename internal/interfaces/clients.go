// Package interfaces defines service contracts for Vista
package interfaces

import (
	"context"

	"github.com/bobmcallan/vista/internal/models"
)

// MarketDataSource provides raw market data for a ticker. Implementations
// return history ascending by date.
type MarketDataSource interface {
	// GetHistory retrieves price history at the requested interval
	GetHistory(ctx context.Context, ticker string, req models.HistoryRequest) ([]models.Bar, error)

	// GetQuarterlyFinancials retrieves the quarterly income statement
	GetQuarterlyFinancials(ctx context.Context, ticker string) (*models.FinancialStatement, error)

	// GetRecommendations retrieves analyst rating changes
	GetRecommendations(ctx context.Context, ticker string) ([]models.RecommendationEvent, error)

	// GetInstitutionalHolders retrieves the largest institutional holders
	GetInstitutionalHolders(ctx context.Context, ticker string) ([]models.Holder, error)
}

// NewsFetcher retrieves the rows of a ticker's news listing page
type NewsFetcher interface {
	FetchNews(ctx context.Context, ticker string) ([]models.ScrapedRow, error)
}
