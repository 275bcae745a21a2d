// Package quote provides prices for valuation: cache, then stored, then the live feed,
// falling back to the last stored price when the feed fails.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements interfaces.QuoteService.
type Service struct {
	client  interfaces.QuoteClient // nil when no feed is configured
	cache   interfaces.QuoteCache
	storage interfaces.StorageManager
	ttl     time.Duration
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new quote service. client may be nil, in which case only
// stored and manual prices are served.
func NewService(client interfaces.QuoteClient, cache interfaces.QuoteCache, storage interfaces.StorageManager, ttl time.Duration, logger *common.Logger) *Service {
	return &Service{
		client:  client,
		cache:   cache,
		storage: storage,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetQuote returns the best available quote for symbol.
// Manual prices always win; a recently stored live price is served without
// calling the feed; a stale stored price is used only when the feed fails.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", models.ErrNoQuote)
	}

	if q, err := s.cache.GetQuote(ctx, symbol); err == nil {
		return q, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Quote cache read failed")
	}

	stored, err := s.storage.MarketPriceStore().GetPrice(ctx, symbol)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Stored price read failed")
	}
	if stored != nil && (stored.Manual || common.IsFresh(stored.UpdatedAt, common.FreshnessStoredPrice, s.now())) {
		q := stored.Quote()
		s.cacheQuote(ctx, q)
		return q, nil
	}

	live, liveErr := s.fetchLive(ctx, symbol)
	if liveErr == nil {
		return live, nil
	}

	if stored != nil {
		s.logger.Warn().
			Str("symbol", symbol).
			Err(liveErr).
			Time("stored_at", stored.UpdatedAt).
			Msg("Live quote failed, using stored price")
		return stored.Quote(), nil
	}

	return nil, fmt.Errorf("%s: %w", symbol, liveErr)
}

// GetQuotes fetches quotes for symbols. Symbols that cannot be priced are
// logged and left out; only context cancellation is an error.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) (map[string]*models.RealTimeQuote, error) {
	quotes := make(map[string]*models.RealTimeQuote, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return quotes, err
		}
		key := NormalizeSymbol(sym)
		if key == "" {
			continue
		}
		if _, done := quotes[key]; done {
			continue
		}
		q, err := s.GetQuote(ctx, key)
		if err != nil {
			s.logger.Debug().Str("symbol", key).Err(err).Msg("No quote, skipping")
			continue
		}
		quotes[key] = q
	}
	return quotes, nil
}

// SetManualPrice records a price for an asset with no market feed. Manual prices
// are never overwritten by RefreshPrices.
func (s *Service) SetManualPrice(ctx context.Context, symbol string, price, previousClose float64) (*models.MarketPrice, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", models.ErrInvalidPrice)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("price must be a positive number: %w", models.ErrInvalidPrice)
	}
	if previousClose < 0 || math.IsNaN(previousClose) || math.IsInf(previousClose, 0) {
		return nil, fmt.Errorf("previous close must be zero or positive: %w", models.ErrInvalidPrice)
	}

	mp := &models.MarketPrice{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: previousClose,
		Manual:        true,
		UpdatedAt:     s.now(),
	}
	if err := s.storage.MarketPriceStore().SavePrice(ctx, mp); err != nil {
		return nil, fmt.Errorf("failed to save manual price: %w", err)
	}
	s.cacheQuote(ctx, mp.Quote())

	s.logger.Info().Str("symbol", symbol).Float64("price", price).Msg("Manual price set")
	return mp, nil
}

// RefreshPrices re-fetches every stored, non-manual price from the feed.
func (s *Service) RefreshPrices(ctx context.Context) (int, error) {
	if s.client == nil {
		s.logger.Debug().Msg("No quote client configured, skipping price refresh")
		return 0, nil
	}

	prices, err := s.storage.MarketPriceStore().ListPrices(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored prices: %w", err)
	}

	refreshed, failed := 0, 0
	for _, p := range prices {
		if p.Manual {
			continue
		}
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.fetchLive(ctx, p.Symbol); err != nil {
			failed++
			s.logger.Warn().Str("symbol", p.Symbol).Err(err).Msg("Price refresh failed")
			continue
		}
		refreshed++
	}

	s.logger.Info().Int("refreshed", refreshed).Int("failed", failed).Msg("Stored prices refreshed")
	return refreshed, nil
}

// fetchLive asks the feed, then stores and caches the result.
func (s *Service) fetchLive(ctx context.Context, symbol string) (*models.RealTimeQuote, error) {
	if s.client == nil {
		return nil, models.ErrNoQuote
	}
	q, err := s.client.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if q == nil || !(q.Close > 0) {
		return nil, models.ErrNoQuote
	}
	q.Code = symbol
	q.Source = models.PriceSourceLive

	mp := &models.MarketPrice{
		Symbol:        symbol,
		Price:         q.Close,
		PreviousClose: q.PreviousClose,
		UpdatedAt:     s.now(),
	}
	if err := s.storage.MarketPriceStore().SavePrice(ctx, mp); err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to store live price")
	}
	s.cacheQuote(ctx, q)
	return q, nil
}

func (s *Service) cacheQuote(ctx context.Context, q *models.RealTimeQuote) {
	if err := s.cache.SetQuote(ctx, q, s.ttl); err != nil {
		s.logger.Warn().Str("symbol", q.Code).Err(err).Msg("Quote cache write failed")
	}
}

var _ interfaces.QuoteService = (*Service)(nil)
