// Package memory provides in-process storage backends for development and tests.
package memory

import (
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// Manager implements interfaces.StorageManager with maps guarded by RWMutexes.
// Contents are lost when the process exits.
type Manager struct {
	portfolios   *PortfolioStore
	transactions *TransactionStore
	prices       *MarketPriceStore
}

// NewManager creates an empty in-memory StorageManager.
func NewManager(logger *common.Logger) *Manager {
	logger.Info().Msg("In-memory storage manager initialized")
	return &Manager{
		portfolios:   NewPortfolioStore(),
		transactions: NewTransactionStore(),
		prices:       NewMarketPriceStore(),
	}
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolios
}

func (m *Manager) TransactionStore() interfaces.TransactionStore {
	return m.transactions
}

func (m *Manager) MarketPriceStore() interfaces.MarketPriceStore {
	return m.prices
}

func (m *Manager) Close() error {
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
