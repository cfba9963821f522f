package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vista/internal/interfaces"
	"github.com/bobmcallan/vista/internal/models"
	"github.com/bobmcallan/vista/internal/services/charts"
)

const dateLayout = "2006-01-02"

// Histogram bounds used when the request leaves them out
var defaultHistogram = interfaces.HistogramOptions{Min: -10, Max: 10, BinSize: 1}

// parseViewParams reads history parameters from the query string over
// models.DefaultViewParams.
func parseViewParams(q url.Values) (models.ViewParams, error) {
	params := models.DefaultViewParams()

	if v := q.Get("period"); v != "" {
		params.Period = v
	}
	if v := q.Get("interval"); v != "" {
		params.Interval = v
	}

	var err error
	if params.Start, err = parseDate(q, "start"); err != nil {
		return params, err
	}
	if params.End, err = parseDate(q, "end"); err != nil {
		return params, err
	}

	flags := []struct {
		name string
		dest *bool
	}{
		{"prepost", &params.Prepost},
		{"actions", &params.Actions},
		{"auto_adjust", &params.AutoAdjust},
		{"back_adjust", &params.BackAdjust},
		{"rounding", &params.Rounding},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return params, &models.InvalidInputError{Index: -1, Reason: f.name + " must be true or false"}
		}
		*f.dest = b
	}

	return params, nil
}

func parseDate(q url.Values, name string) (time.Time, error) {
	v := q.Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, &models.InvalidInputError{Index: -1, Reason: name + " must be YYYY-MM-DD"}
	}
	return t, nil
}

func parseFloat(q url.Values, name string, fallback float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &models.InvalidInputError{Index: -1, Reason: name + " must be a number"}
	}
	return f, nil
}

// splitList splits a comma separated query value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseIndicators resolves a comma separated list of indicator names.
// An empty value selects nothing.
func parseIndicators(v string) ([]models.Indicator, error) {
	names := splitList(v)
	selected := make([]models.Indicator, 0, len(names))
	for _, name := range names {
		ind, err := models.ParseIndicator(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, ind)
	}
	return selected, nil
}

// selectIndicators returns copies of rows holding only the selected
// columns. Cached rows are never modified.
func selectIndicators(rows []models.IndicatorRow, selected []models.Indicator) []models.IndicatorRow {
	out := make([]models.IndicatorRow, len(rows))
	for i, row := range rows {
		values := make(map[models.Indicator]*float64, len(selected))
		for _, ind := range selected {
			values[ind] = row.Values[ind]
		}
		out[i] = models.IndicatorRow{Date: row.Date, Values: values}
	}
	return out
}

// --- Price views ---

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	params, err := parseViewParams(r.URL.Query())
	if err != nil {
		WriteViewError(w, err)
		return
	}

	bars, err := s.app.Views.History(r.Context(), ticker, params)
	if err != nil {
		s.viewFailed(w, "history", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, bars)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request, ticker string) {
	q := r.URL.Query()
	params, err := parseViewParams(q)
	if err != nil {
		WriteViewError(w, err)
		return
	}
	selected, err := parseIndicators(q.Get("names"))
	if err != nil {
		WriteViewError(w, err)
		return
	}

	rows, err := s.app.Views.Indicators(r.Context(), ticker, params)
	if err != nil {
		s.viewFailed(w, "indicators", ticker, err)
		return
	}
	if len(selected) > 0 {
		rows = selectIndicators(rows, selected)
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request, ticker string) {
	params, err := parseViewParams(r.URL.Query())
	if err != nil {
		WriteViewError(w, err)
		return
	}

	rows, err := s.app.Views.Change(r.Context(), ticker, params)
	if err != nil {
		s.viewFailed(w, "change", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleChangeHistogram(w http.ResponseWriter, r *http.Request, ticker string) {
	q := r.URL.Query()
	params, err := parseViewParams(q)
	if err != nil {
		WriteViewError(w, err)
		return
	}

	hist := defaultHistogram
	if hist.Min, err = parseFloat(q, "min", defaultHistogram.Min); err != nil {
		WriteViewError(w, err)
		return
	}
	if hist.Max, err = parseFloat(q, "max", defaultHistogram.Max); err != nil {
		WriteViewError(w, err)
		return
	}
	if hist.BinSize, err = parseFloat(q, "bin", defaultHistogram.BinSize); err != nil {
		WriteViewError(w, err)
		return
	}

	bins, err := s.app.Views.ChangeHistogram(r.Context(), ticker, params, hist)
	if err != nil {
		s.viewFailed(w, "change_histogram", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, bins)
}

// handleChart renders the close price with the selected indicators as PNG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, ticker string) {
	q := r.URL.Query()
	params, err := parseViewParams(q)
	if err != nil {
		WriteViewError(w, err)
		return
	}
	selected, err := parseIndicators(q.Get("indicators"))
	if err != nil {
		WriteViewError(w, err)
		return
	}

	bars, err := s.app.Views.History(r.Context(), ticker, params)
	if err != nil {
		s.viewFailed(w, "chart", ticker, err)
		return
	}

	var rows []models.IndicatorRow
	if len(selected) > 0 {
		rows, err = s.app.Views.Indicators(r.Context(), ticker, params)
		if err != nil {
			s.viewFailed(w, "chart", ticker, err)
			return
		}
	}

	png, err := charts.RenderPriceChart(strings.ToUpper(ticker), bars, rows, selected)
	if err != nil {
		s.viewFailed(w, "chart", ticker, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- News ---

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request, ticker string) {
	items, err := s.app.Views.News(r.Context(), ticker)
	if err != nil {
		s.viewFailed(w, "news", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// --- Financials ---

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request, ticker string) {
	statement, err := s.app.Views.Financials(r.Context(), ticker)
	if err != nil {
		s.viewFailed(w, "financials", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, statement)
}

func (s *Server) handleFinancialsSlopes(w http.ResponseWriter, r *http.Request, ticker string) {
	rows, err := s.app.Views.FinancialsSlopes(r.Context(), ticker)
	if err != nil {
		s.viewFailed(w, "financials_slopes", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// --- Recommendations and holders ---

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request, ticker string) {
	events, err := s.app.Views.Recommendations(r.Context(), ticker)
	if err != nil {
		s.viewFailed(w, "recommendations", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, events)
}

func (s *Server) handleRecommendationsTimeline(w http.ResponseWriter, r *http.Request, ticker string) {
	q := r.URL.Query()
	params, err := parseViewParams(q)
	if err != nil {
		WriteViewError(w, err)
		return
	}

	rows, err := s.app.Views.ActionsRecommendations(r.Context(), ticker, params, splitList(q.Get("outcomes")))
	if err != nil {
		s.viewFailed(w, "recommendations_timeline", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHolders(w http.ResponseWriter, r *http.Request, ticker string) {
	holders, err := s.app.Views.InstitutionalHolders(r.Context(), ticker)
	if err != nil {
		s.viewFailed(w, "holders", ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, holders)
}

// viewFailed logs a failed view and writes the mapped error response.
func (s *Server) viewFailed(w http.ResponseWriter, view, ticker string, err error) {
	status, code := ErrorStatus(err)
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		event = s.logger.Error()
	}
	event.
		Str("view", view).
		Str("ticker", ticker).
		Str("code", code).
		Err(err).
		Msg("View failed")
	WriteErrorWithCode(w, status, err.Error(), code)
}
