package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/vista/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/cache/purge", s.handleCachePurge)

	// Stock views
	mux.HandleFunc("/api/stocks/", s.routeStocks)
}

// routeStocks dispatches /api/stocks/{ticker}/{view} to the appropriate handler.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/stocks/"), "/")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "ticker is required in path", CodeInvalidInput)
		return
	}
	if len(parts) < 2 {
		WriteError(w, http.StatusNotFound, "view is required: /api/stocks/{ticker}/{view}")
		return
	}

	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	ticker := parts[0]
	switch parts[1] {
	case "history":
		s.handleHistory(w, r, ticker)
	case "indicators":
		s.handleIndicators(w, r, ticker)
	case "change":
		s.handleChange(w, r, ticker)
	case "change/histogram":
		s.handleChangeHistogram(w, r, ticker)
	case "news":
		s.handleNews(w, r, ticker)
	case "financials":
		s.handleFinancials(w, r, ticker)
	case "financials/slopes":
		s.handleFinancialsSlopes(w, r, ticker)
	case "recommendations":
		s.handleRecommendations(w, r, ticker)
	case "recommendations/timeline":
		s.handleRecommendationsTimeline(w, r, ticker)
	case "holders":
		s.handleHolders(w, r, ticker)
	case "chart.png":
		s.handleChart(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleCachePurge handles POST /api/cache/purge[?ticker=].
func (s *Server) handleCachePurge(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	var purged int
	if ticker != "" {
		purged = s.app.Views.Invalidate(ticker)
	} else {
		purged = s.app.Views.Purge()
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("purged", purged).
		Msg("View cache purged")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"purged": purged,
	})
}
