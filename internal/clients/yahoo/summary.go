package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/bobmcallan/vista/internal/models"
)

// summary fields that are not statement metrics
var statementSkip = map[string]bool{
	"maxAge":  true,
	"endDate": true,
}

func (c *Client) quoteSummary(ctx context.Context, ticker string, module string) (*summaryResult, error) {
	params := url.Values{}
	params.Set("modules", module)

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))

	var resp summaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{StatusCode: 200, Message: resp.QuoteSummary.Error.Description, Endpoint: path}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return &summaryResult{}, nil
	}
	return &resp.QuoteSummary.Result[0], nil
}

// GetQuarterlyFinancials retrieves the quarterly income statement as a
// metrics x periods table. Periods keep the source order (newest first);
// metrics are sorted by name. Unreported values are nil.
func (c *Client) GetQuarterlyFinancials(ctx context.Context, ticker string) (*models.FinancialStatement, error) {
	result, err := c.quoteSummary(ctx, ticker, "incomeStatementHistoryQuarterly")
	if err != nil {
		return nil, err
	}

	stmt := &models.FinancialStatement{Metrics: []string{}, Periods: []time.Time{}, Values: [][]*float64{}}
	if result.IncomeStatementHistoryQuarterly == nil {
		return stmt, nil
	}
	statements := result.IncomeStatementHistoryQuarterly.IncomeStatementHistory

	names := map[string]bool{}
	for _, s := range statements {
		for name := range s {
			if !statementSkip[name] {
				names[name] = true
			}
		}
	}
	for name := range names {
		stmt.Metrics = append(stmt.Metrics, name)
	}
	sort.Strings(stmt.Metrics)

	stmt.Values = make([][]*float64, len(stmt.Metrics))
	for i := range stmt.Values {
		stmt.Values[i] = make([]*float64, 0, len(statements))
	}

	for _, s := range statements {
		var end rawValue
		if raw, ok := s["endDate"]; ok {
			if err := json.Unmarshal(raw, &end); err != nil {
				return nil, fmt.Errorf("failed to decode statement endDate: %w", err)
			}
		}
		if end.Raw == nil {
			continue
		}
		stmt.Periods = append(stmt.Periods, time.Unix(int64(*end.Raw), 0).UTC())

		for m, name := range stmt.Metrics {
			var value *float64
			if raw, ok := s[name]; ok {
				value = reportedValue(raw)
			}
			stmt.Values[m] = append(stmt.Values[m], value)
		}
	}

	c.logger.Debug().Str("ticker", ticker).Int("periods", len(stmt.Periods)).Int("metrics", len(stmt.Metrics)).Msg("Yahoo financials fetched")

	return stmt, nil
}

// GetRecommendations retrieves analyst upgrade and downgrade history
func (c *Client) GetRecommendations(ctx context.Context, ticker string) ([]models.RecommendationEvent, error) {
	result, err := c.quoteSummary(ctx, ticker, "upgradeDowngradeHistory")
	if err != nil {
		return nil, err
	}
	if result.UpgradeDowngradeHistory == nil {
		return []models.RecommendationEvent{}, nil
	}

	history := result.UpgradeDowngradeHistory.History
	events := make([]models.RecommendationEvent, 0, len(history))
	for _, h := range history {
		events = append(events, models.RecommendationEvent{
			Date:      time.Unix(h.EpochGradeDate, 0).UTC(),
			Firm:      h.Firm,
			FromGrade: h.FromGrade,
			ToGrade:   h.ToGrade,
			Action:    h.Action,
		})
	}
	return events, nil
}

// GetInstitutionalHolders retrieves the top institutional holders
func (c *Client) GetInstitutionalHolders(ctx context.Context, ticker string) ([]models.Holder, error) {
	result, err := c.quoteSummary(ctx, ticker, "institutionOwnership")
	if err != nil {
		return nil, err
	}
	if result.InstitutionOwnership == nil {
		return []models.Holder{}, nil
	}

	list := result.InstitutionOwnership.OwnershipList
	holders := make([]models.Holder, 0, len(list))
	for _, o := range list {
		h := models.Holder{
			Holder:  o.Organization,
			Shares:  int64(o.Position.float()),
			PctHeld: o.PctHeld.float(),
			Value:   o.Value.float(),
		}
		if o.ReportDate.Raw != nil {
			h.DateReported = models.DayOf(time.Unix(int64(*o.ReportDate.Raw), 0).UTC())
		}
		holders = append(holders, h)
	}
	return holders, nil
}
