package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type cachedQuote struct {
	quote     models.RealTimeQuote
	expiresAt time.Time
}

// QuoteCache is a TTL map of quotes. Expired entries are dropped on read.
type QuoteCache struct {
	mu      sync.Mutex
	entries map[string]cachedQuote
	now     func() time.Time
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{entries: make(map[string]cachedQuote), now: time.Now}
}

func (c *QuoteCache) GetQuote(_ context.Context, symbol string) (*models.RealTimeQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrNotFound)
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, symbol)
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrNotFound)
	}
	q := e.quote
	return &q, nil
}

func (c *QuoteCache) SetQuote(_ context.Context, quote *models.RealTimeQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[quote.Code] = cachedQuote{quote: *quote, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *QuoteCache) Close() error {
	return nil
}

var _ interfaces.QuoteCache = (*QuoteCache)(nil)
