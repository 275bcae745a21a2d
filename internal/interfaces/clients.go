package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// QuoteClient fetches live prices from a market data provider
type QuoteClient interface {
	// GetRealTimeQuote retrieves the latest (possibly delayed) quote for a symbol
	GetRealTimeQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error)
}
