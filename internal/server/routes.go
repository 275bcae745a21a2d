package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)

	// Market data
	mux.HandleFunc("/api/market/quote/", s.handleMarketQuote)
	mux.HandleFunc("/api/market/prices/", s.handleMarketPrice)
}

// routePortfolios dispatches /api/portfolios/{id}/* to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/portfolios/"), "/")
	if path == "" {
		s.handlePortfolios(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handlePortfolio(w, r, id)
	case "holdings":
		s.handlePortfolioHoldings(w, r, id)
	case "chart":
		s.handlePortfolioChart(w, r, id)
	case "transactions":
		s.handleTransactions(w, r, id)
	case "import":
		s.handleImport(w, r, id)
	case "export":
		s.handleExport(w, r, id)
	default:
		if strings.HasPrefix(subpath, "transactions/") {
			txID := strings.TrimPrefix(subpath, "transactions/")
			s.handleTransaction(w, r, id, txID)
		} else {
			WriteError(w, http.StatusNotFound, "Not found")
		}
	}
}

// --- System handlers ---

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
