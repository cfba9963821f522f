package yahoo

import "encoding/json"

type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// chartResponse is the v8 chart envelope
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiErrorBody `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		Currency             string `json:"currency"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Events     struct {
		Dividends map[string]dividendEvent `json:"dividends"`
		Splits    map[string]splitEvent    `json:"splits"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type dividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type splitEvent struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

// summaryResponse is the v10 quoteSummary envelope
type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiErrorBody   `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	IncomeStatementHistoryQuarterly *struct {
		IncomeStatementHistory []map[string]json.RawMessage `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistoryQuarterly"`
	UpgradeDowngradeHistory *struct {
		History []upgradeDowngrade `json:"history"`
	} `json:"upgradeDowngradeHistory"`
	InstitutionOwnership *struct {
		OwnershipList []ownership `json:"ownershipList"`
	} `json:"institutionOwnership"`
}

// rawValue is a Yahoo formatted number: {"raw": 1.5, "fmt": "1.5"}. An
// empty object means the value is not reported.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type upgradeDowngrade struct {
	EpochGradeDate int64  `json:"epochGradeDate"`
	Firm           string `json:"firm"`
	ToGrade        string `json:"toGrade"`
	FromGrade      string `json:"fromGrade"`
	Action         string `json:"action"`
}

type ownership struct {
	ReportDate   rawValue `json:"reportDate"`
	Organization string   `json:"organization"`
	PctHeld      rawValue `json:"pctHeld"`
	Position     rawValue `json:"position"`
	Value        rawValue `json:"value"`
}

func (v rawValue) float() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

// reportedValue decodes a statement cell. Cells that are not a formatted
// number (strings, arrays, empty objects) are unreported and return nil.
func reportedValue(raw json.RawMessage) *float64 {
	var v rawValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v.Raw
}
