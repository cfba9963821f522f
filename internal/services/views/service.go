// Package views assembles the derived views of a ticker from the market
// data source and news fetcher, memoising every result.
package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/vista/internal/cache"
	"github.com/bobmcallan/vista/internal/financials"
	"github.com/bobmcallan/vista/internal/interfaces"
	"github.com/bobmcallan/vista/internal/models"
	"github.com/bobmcallan/vista/internal/recommendations"
	"github.com/bobmcallan/vista/internal/sentiment"
	"github.com/bobmcallan/vista/internal/signals"
)

// Options configures recommendation handling
type Options struct {
	// Outcomes allowed in the recommendation timeline when the caller
	// names none.
	Outcomes []string
	// Grades maps raw analyst grades to outcomes.
	Grades map[string]string
}

// Service implements ViewService
type Service struct {
	source   interfaces.MarketDataSource
	news     interfaces.NewsFetcher
	cache    *cache.Cache
	merger   *recommendations.Merger
	outcomes []string
	scorer   sentiment.Scorer
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a new view service
func NewService(
	source interfaces.MarketDataSource,
	news interfaces.NewsFetcher,
	c *cache.Cache,
	opts Options,
	logger arbor.ILogger,
) *Service {
	if c == nil {
		c = cache.New()
	}
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	outcomes := opts.Outcomes
	if len(outcomes) == 0 {
		outcomes = recommendations.DefaultOutcomes
	}
	return &Service{
		source:   source,
		news:     news,
		cache:    c,
		merger:   recommendations.NewMerger(opts.Grades),
		outcomes: outcomes,
		scorer:   sentiment.NewVADER(),
		validate: newValidator(),
		logger:   logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(models.ViewParams)
		if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
			sl.ReportError(p.End, "End", "end", "gtefield", "Start")
		}
	}, models.ViewParams{})
	return v
}

// request resolves and checks params. The interval is resolved first so an
// unknown name fails before anything is fetched.
func (s *Service) request(ticker string, params models.ViewParams) (models.HistoryRequest, error) {
	interval, err := models.ParseInterval(params.Interval)
	if err != nil {
		return models.HistoryRequest{}, err
	}
	if err := s.checkTicker(ticker); err != nil {
		return models.HistoryRequest{}, err
	}
	if err := s.validate.Struct(params); err != nil {
		return models.HistoryRequest{}, &models.InvalidInputError{Index: -1, Reason: validationReason(err)}
	}
	return models.HistoryRequest{
		Interval:   interval,
		Period:     params.Period,
		Start:      params.Start,
		End:        params.End,
		Prepost:    params.Prepost,
		Actions:    params.Actions,
		AutoAdjust: params.AutoAdjust,
		BackAdjust: params.BackAdjust,
		Rounding:   params.Rounding,
	}, nil
}

func (s *Service) checkTicker(ticker string) error {
	if cache.NormalizeTicker(ticker) == "" {
		return &models.InvalidInputError{Index: -1, Reason: "ticker is required"}
	}
	return nil
}

func validationReason(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			reasons = append(reasons, fmt.Sprintf("%s must be one of [%s]", strings.ToLower(fe.Field()), fe.Param()))
		case "gtefield":
			reasons = append(reasons, "end must not be before start")
		default:
			reasons = append(reasons, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(reasons, "; ")
}

// memo returns the cached value for key or computes and stores it. Errors
// are returned unchanged and never cached.
func memo[T any](s *Service, key cache.Key, compute func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			s.logger.Debug().Str("view", key.Method).Str("ticker", key.Ticker).Msg("View cache hit")
			return t, nil
		}
	}
	t, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(key, t)
	return t, nil
}

// History returns raw price history
func (s *Service) History(ctx context.Context, ticker string, params models.ViewParams) ([]models.Bar, error) {
	req, err := s.request(ticker, params)
	if err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "history", Ticker: ticker, Params: req.Key()}, func() ([]models.Bar, error) {
		bars, err := s.source.GetHistory(ctx, ticker, req)
		if err != nil {
			return nil, err
		}
		if bars == nil {
			bars = []models.Bar{}
		}
		s.logger.Info().Str("ticker", ticker).Str("interval", req.Interval.String()).Int("bars", len(bars)).Msg("History fetched")
		return bars, nil
	})
}

// Indicators returns technical indicators aligned with History
func (s *Service) Indicators(ctx context.Context, ticker string, params models.ViewParams) ([]models.IndicatorRow, error) {
	req, err := s.request(ticker, params)
	if err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "indicators", Ticker: ticker, Params: req.Key()}, func() ([]models.IndicatorRow, error) {
		bars, err := s.History(ctx, ticker, params)
		if err != nil {
			return nil, err
		}
		return signals.ComputeIndicators(bars)
	})
}

// Change returns the close-to-close change aligned with History
func (s *Service) Change(ctx context.Context, ticker string, params models.ViewParams) ([]models.ChangeRow, error) {
	req, err := s.request(ticker, params)
	if err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "change", Ticker: ticker, Params: req.Key()}, func() ([]models.ChangeRow, error) {
		bars, err := s.History(ctx, ticker, params)
		if err != nil {
			return nil, err
		}
		return signals.Change(bars)
	})
}

// ChangeHistogram bins the Change series
func (s *Service) ChangeHistogram(ctx context.Context, ticker string, params models.ViewParams, hist interfaces.HistogramOptions) ([]models.HistogramBin, error) {
	req, err := s.request(ticker, params)
	if err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	key := cache.Key{
		Method: "change_histogram",
		Ticker: ticker,
		Params: fmt.Sprintf("%s|%g|%g|%g", req.Key(), hist.Min, hist.Max, hist.BinSize),
	}
	return memo(s, key, func() ([]models.HistogramBin, error) {
		rows, err := s.Change(ctx, ticker, params)
		if err != nil {
			return nil, err
		}
		return signals.ChangeHistogram(rows, hist.Min, hist.Max, hist.BinSize)
	})
}

// News returns scored headlines in page order, newest first
func (s *Service) News(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	if err := s.checkTicker(ticker); err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "news", Ticker: ticker}, func() ([]models.NewsItem, error) {
		rows, err := s.news.FetchNews(ctx, ticker)
		if err != nil {
			return nil, err
		}
		items, err := sentiment.ScoreNewsWith(s.scorer, rows)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News table could not be scored")
			return nil, err
		}
		s.logger.Info().Str("ticker", ticker).Int("headlines", len(items)).Msg("News scored")
		return items, nil
	})
}

func (s *Service) quarterly(ctx context.Context, ticker string) (*models.FinancialStatement, error) {
	return memo(s, cache.Key{Method: "quarterly_financials", Ticker: ticker}, func() (*models.FinancialStatement, error) {
		return s.source.GetQuarterlyFinancials(ctx, ticker)
	})
}

// FinancialsSlopes returns the earliest-vs-latest quarterly statement table
func (s *Service) FinancialsSlopes(ctx context.Context, ticker string) ([]models.SlopeRow, error) {
	if err := s.checkTicker(ticker); err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "financials_slopes", Ticker: ticker}, func() ([]models.SlopeRow, error) {
		stmt, err := s.quarterly(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return financials.Slopes(stmt), nil
	})
}

// Financials returns the quarterly statement with incomplete periods removed
func (s *Service) Financials(ctx context.Context, ticker string) (*models.CleanStatement, error) {
	if err := s.checkTicker(ticker); err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "financials", Ticker: ticker}, func() (*models.CleanStatement, error) {
		stmt, err := s.quarterly(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return financials.Clean(stmt), nil
	})
}

// Recommendations returns the raw analyst rating changes
func (s *Service) Recommendations(ctx context.Context, ticker string) ([]models.RecommendationEvent, error) {
	if err := s.checkTicker(ticker); err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "recommendations", Ticker: ticker}, func() ([]models.RecommendationEvent, error) {
		events, err := s.source.GetRecommendations(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []models.RecommendationEvent{}
		}
		return events, nil
	})
}

// ActionsRecommendations returns history merged with recommendation events
// whose outcome is in outcomes, or the configured outcomes when none are
// given.
func (s *Service) ActionsRecommendations(ctx context.Context, ticker string, params models.ViewParams, outcomes []string) ([]models.TimelineRow, error) {
	req, err := s.request(ticker, params)
	if err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)
	if len(outcomes) == 0 {
		outcomes = s.outcomes
	}

	key := cache.Key{
		Method: "actions_recommendations",
		Ticker: ticker,
		Params: req.Key() + "|" + strings.Join(outcomes, ","),
	}
	return memo(s, key, func() ([]models.TimelineRow, error) {
		bars, err := s.History(ctx, ticker, params)
		if err != nil {
			return nil, err
		}
		events, err := s.Recommendations(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return s.merger.Merge(bars, events, outcomes), nil
	})
}

// InstitutionalHolders returns the largest institutional holders
func (s *Service) InstitutionalHolders(ctx context.Context, ticker string) ([]models.Holder, error) {
	if err := s.checkTicker(ticker); err != nil {
		return nil, err
	}
	ticker = cache.NormalizeTicker(ticker)

	return memo(s, cache.Key{Method: "institutional_holders", Ticker: ticker}, func() ([]models.Holder, error) {
		holders, err := s.source.GetInstitutionalHolders(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if holders == nil {
			holders = []models.Holder{}
		}
		return holders, nil
	})
}

// Invalidate drops memoised views for ticker
func (s *Service) Invalidate(ticker string) int {
	n := s.cache.Invalidate(ticker)
	s.logger.Info().Str("ticker", cache.NormalizeTicker(ticker)).Int("entries", n).Msg("View cache invalidated")
	return n
}

// Purge drops every memoised view
func (s *Service) Purge() int {
	n := s.cache.Purge()
	s.logger.Info().Int("entries", n).Msg("View cache purged")
	return n
}

// Ensure Service implements ViewService
var _ interfaces.ViewService = (*Service)(nil)
