package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioStore keeps portfolios by ID.
type PortfolioStore struct {
	mu   sync.RWMutex
	byID map[string]models.Portfolio
}

func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{byID: make(map[string]models.Portfolio)}
}

func (s *PortfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *PortfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[portfolio.ID] = *portfolio
	return nil
}

func (s *PortfolioStore) DeletePortfolio(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
	}
	delete(s.byID, id)
	return nil
}

func (s *PortfolioStore) ListPortfolios(_ context.Context, userID string) ([]*models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Portfolio
	for _, p := range s.byID {
		if p.UserID == userID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// TransactionStore keeps transactions by ID.
type TransactionStore struct {
	mu   sync.RWMutex
	byID map[string]models.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{byID: make(map[string]models.Transaction)}
}

func (s *TransactionStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return &tx, nil
}

func (s *TransactionStore) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tx.ID] = *tx
	return nil
}

func (s *TransactionStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	delete(s.byID, id)
	return nil
}

func (s *TransactionStore) ListTransactions(_ context.Context, portfolioID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range s.byID {
		if tx.PortfolioID == portfolioID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *TransactionStore) DeleteByPortfolio(_ context.Context, portfolioID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, tx := range s.byID {
		if tx.PortfolioID == portfolioID {
			delete(s.byID, id)
			count++
		}
	}
	return count, nil
}

// MarketPriceStore keeps the last price per symbol.
type MarketPriceStore struct {
	mu       sync.RWMutex
	bySymbol map[string]models.MarketPrice
}

func NewMarketPriceStore() *MarketPriceStore {
	return &MarketPriceStore{bySymbol: make(map[string]models.MarketPrice)}
}

func (s *MarketPriceStore) GetPrice(_ context.Context, symbol string) (*models.MarketPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.bySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("price %s: %w", symbol, models.ErrNotFound)
	}
	return &p, nil
}

func (s *MarketPriceStore) SavePrice(_ context.Context, price *models.MarketPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySymbol[price.Symbol] = *price
	return nil
}

func (s *MarketPriceStore) ListPrices(_ context.Context) ([]*models.MarketPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MarketPrice, 0, len(s.bySymbol))
	for _, p := range s.bySymbol {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

var (
	_ interfaces.PortfolioStore   = (*PortfolioStore)(nil)
	_ interfaces.TransactionStore = (*TransactionStore)(nil)
	_ interfaces.MarketPriceStore = (*MarketPriceStore)(nil)
)
