package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bobmcallan/vista/internal/models"
)

// statement fields that are not metrics
var statementSkip = map[string]bool{
	"date":            true,
	"filing_date":     true,
	"currency_symbol": true,
}

// fundamentalsResponse holds the parts of /fundamentals used here
type fundamentalsResponse struct {
	Financials struct {
		IncomeStatement struct {
			Quarterly map[string]map[string]json.RawMessage `json:"quarterly"`
		} `json:"Income_Statement"`
	} `json:"Financials"`
	Holders struct {
		Institutions map[string]institutionResponse `json:"Institutions"`
	} `json:"Holders"`
}

type institutionResponse struct {
	Name          string      `json:"name"`
	Date          string      `json:"date"`
	TotalShares   flexFloat64 `json:"totalShares"`
	TotalAssets   flexFloat64 `json:"totalAssets"`
	CurrentShares flexFloat64 `json:"currentShares"`
}

func (c *Client) fundamentals(ctx context.Context, ticker string) (*fundamentalsResponse, error) {
	var resp fundamentalsResponse
	if err := c.get(ctx, fmt.Sprintf("/fundamentals/%s", c.symbol(ticker)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetQuarterlyFinancials retrieves the quarterly income statement. Periods
// are newest first; metrics are sorted by name.
func (c *Client) GetQuarterlyFinancials(ctx context.Context, ticker string) (*models.FinancialStatement, error) {
	resp, err := c.fundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	quarterly := resp.Financials.IncomeStatement.Quarterly

	stmt := &models.FinancialStatement{Metrics: []string{}, Periods: []time.Time{}, Values: [][]*float64{}}

	type period struct {
		date time.Time
		key  string
	}
	periods := make([]period, 0, len(quarterly))
	names := map[string]bool{}
	for key, fields := range quarterly {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		periods = append(periods, period{date: date, key: key})
		for name := range fields {
			if !statementSkip[name] {
				names[name] = true
			}
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].date.After(periods[j].date) })
	for name := range names {
		stmt.Metrics = append(stmt.Metrics, name)
	}
	sort.Strings(stmt.Metrics)

	stmt.Values = make([][]*float64, len(stmt.Metrics))
	for m := range stmt.Values {
		stmt.Values[m] = make([]*float64, len(periods))
	}
	for p, per := range periods {
		stmt.Periods = append(stmt.Periods, per.date)
		fields := quarterly[per.key]
		for m, name := range stmt.Metrics {
			stmt.Values[m][p] = nullableFloat(fields[name])
		}
	}

	c.logger.Debug().Str("ticker", ticker).Int("periods", len(stmt.Periods)).Msg("EODHD financials fetched")

	return stmt, nil
}

// GetRecommendations returns no events: EODHD publishes aggregate analyst
// ratings only, not individual rating changes.
func (c *Client) GetRecommendations(ctx context.Context, ticker string) ([]models.RecommendationEvent, error) {
	return []models.RecommendationEvent{}, nil
}

// GetInstitutionalHolders retrieves institutional holders ordered by
// shares held.
func (c *Client) GetInstitutionalHolders(ctx context.Context, ticker string) ([]models.Holder, error) {
	resp, err := c.fundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	holders := make([]models.Holder, 0, len(resp.Holders.Institutions))
	for _, inst := range resp.Holders.Institutions {
		h := models.Holder{
			Holder:  inst.Name,
			Shares:  int64(inst.CurrentShares),
			PctHeld: float64(inst.TotalShares) / 100,
			Value:   float64(inst.TotalAssets),
		}
		if date, err := time.Parse("2006-01-02", inst.Date); err == nil {
			h.DateReported = date
		}
		holders = append(holders, h)
	}
	sort.SliceStable(holders, func(i, j int) bool {
		if holders[i].Shares != holders[j].Shares {
			return holders[i].Shares > holders[j].Shares
		}
		return holders[i].Holder < holders[j].Holder
	})
	return holders, nil
}

// nullableFloat decodes a number, numeric string, or null. Anything that
// is not a number is nil.
func nullableFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}
