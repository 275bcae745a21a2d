package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioService manages portfolios, their transactions and valuations
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, name, description string) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)
	// DeletePortfolio removes the portfolio and all of its transactions
	DeletePortfolio(ctx context.Context, id string) error

	// AddTransaction validates and records a transaction
	AddTransaction(ctx context.Context, portfolioID string, tx models.Transaction) (*models.Transaction, error)
	// ListTransactions returns the ledger, optionally filtered to one symbol
	ListTransactions(ctx context.Context, portfolioID, symbol string) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, portfolioID, txID string) error

	// GetPortfolioView values the portfolio at current prices
	GetPortfolioView(ctx context.Context, portfolioID string) (*models.PortfolioView, error)
	// RenderAllocationChart draws the asset allocation as a PNG
	RenderAllocationChart(ctx context.Context, portfolioID string) ([]byte, error)

	// ImportTransactions reads a spreadsheet and records every row; format is "xlsx" or "csv"
	ImportTransactions(ctx context.Context, portfolioID, format string, r io.Reader) (int, error)
	// ExportTransactions writes the ledger as a spreadsheet
	ExportTransactions(ctx context.Context, portfolioID, format string, w io.Writer) error
}

// QuoteService provides prices for valuation
type QuoteService interface {
	// GetQuotes returns quotes keyed by symbol; symbols with no price are omitted
	GetQuotes(ctx context.Context, symbols []string) (map[string]*models.RealTimeQuote, error)
	GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error)
	// SetManualPrice records a price for assets with no market feed
	SetManualPrice(ctx context.Context, symbol string, price, previousClose float64) (*models.MarketPrice, error)
	// RefreshPrices re-fetches every stored, non-manual price; returns the number refreshed
	RefreshPrices(ctx context.Context) (int, error)
}
