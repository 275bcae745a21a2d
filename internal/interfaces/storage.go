// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	PortfolioStore() PortfolioStore
	TransactionStore() TransactionStore
	MarketPriceStore() MarketPriceStore

	// Lifecycle
	Close() error
}

// PortfolioStore persists portfolio records. Lookups of unknown IDs return models.ErrNotFound.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	DeletePortfolio(ctx context.Context, id string) error
	// ListPortfolios returns the user's portfolios ordered by name.
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
}

// TransactionStore persists the immutable transaction ledger.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	// ListTransactions returns a portfolio's transactions ordered by date, then creation time.
	ListTransactions(ctx context.Context, portfolioID string) ([]models.Transaction, error)
	// DeleteByPortfolio removes every transaction of a portfolio and returns how many went.
	DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error)
}

// MarketPriceStore persists the last known price per symbol.
type MarketPriceStore interface {
	GetPrice(ctx context.Context, symbol string) (*models.MarketPrice, error)
	SavePrice(ctx context.Context, price *models.MarketPrice) error
	ListPrices(ctx context.Context) ([]*models.MarketPrice, error)
}

// QuoteCache holds recent quotes for a short time. A miss returns models.ErrNotFound.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error)
	SetQuote(ctx context.Context, quote *models.RealTimeQuote, ttl time.Duration) error
	Close() error
}
