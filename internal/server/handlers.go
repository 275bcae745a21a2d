package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/spreadsheet"
)

// maxImportBytes bounds spreadsheet uploads.
const maxImportBytes = 10 << 20

// --- Portfolio handlers ---

type createPortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handlePortfolios handles GET (list) and POST (create) on /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		portfolios, err := s.app.PortfolioService.ListPortfolios(ctx)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		if portfolios == nil {
			portfolios = []*models.Portfolio{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})
		return
	}

	var req createPortfolioRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := s.app.PortfolioService.CreatePortfolio(ctx, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		if err := s.app.PortfolioService.DeletePortfolio(ctx, id); err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	p, err := s.app.PortfolioService.GetPortfolio(ctx, id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handlePortfolioHoldings(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	view, err := s.app.PortfolioService.GetPortfolioView(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.PortfolioService.RenderAllocationChart(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Transaction handlers ---

// transactionRequest is the wire form of a new transaction; date is YYYY-MM-DD.
type transactionRequest struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	AssetClass  string  `json:"asset_class"`
	Type        string  `json:"type"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalAmount float64 `json:"total_amount"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes"`
}

func (req transactionRequest) toModel() (models.Transaction, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", req.Date, models.ErrInvalidTransaction)
	}
	return models.Transaction{
		Symbol:      req.Symbol,
		Name:        req.Name,
		AssetClass:  models.ParseAssetClass(req.AssetClass),
		Type:        models.TransactionType(req.Type),
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalAmount: req.TotalAmount,
		Date:        date,
		Notes:       req.Notes,
	}, nil
}

// handleTransactions handles GET (list, optional ?symbol=) and POST (add).
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		txs, err := s.app.PortfolioService.ListTransactions(ctx, portfolioID, r.URL.Query().Get("symbol"))
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		if txs == nil {
			txs = []models.Transaction{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
		return
	}

	var req transactionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	tx, err := req.toModel()
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	saved, err := s.app.PortfolioService.AddTransaction(ctx, portfolioID, tx)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request, portfolioID, txID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := s.app.PortfolioService.DeleteTransaction(r.Context(), portfolioID, txID); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImport reads a raw xlsx or csv body; ?format= defaults to csv.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	format := formatParam(r)
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	n, err := s.app.PortfolioService.ImportTransactions(r.Context(), portfolioID, format, body)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// handleExport writes the ledger; ?format= defaults to csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	format, err := spreadsheet.ParseFormat(formatParam(r))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	// Buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := s.app.PortfolioService.ExportTransactions(r.Context(), portfolioID, string(format), &buf); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	contentType := "text/csv"
	if format == spreadsheet.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.%s"`, portfolioID, format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func formatParam(r *http.Request) string {
	if f := strings.TrimSpace(r.URL.Query().Get("format")); f != "" {
		return f
	}
	return string(spreadsheet.FormatCSV)
}

// --- Market handlers ---

func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := strings.TrimPrefix(r.URL.Path, "/api/market/quote/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	q, err := s.app.QuoteService.GetQuote(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}

type manualPriceRequest struct {
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
}

// handleMarketPrice handles PUT /api/market/prices/{symbol}, setting a manual price.
func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	symbol := strings.TrimPrefix(r.URL.Path, "/api/market/prices/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	var req manualPriceRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	mp, err := s.app.QuoteService.SetManualPrice(r.Context(), symbol, req.Price, req.PreviousClose)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, mp)
}
