// Package surrealdb implements Folio storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

const (
	tablePortfolio   = "portfolio"
	tableTransaction = "transaction"
	tableMarketPrice = "market_price"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	portfolioStore   *PortfolioStore
	transactionStore *TransactionStore
	priceStore       *MarketPriceStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineTables(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	m := &Manager{
		db:               db,
		logger:           logger,
		portfolioStore:   NewPortfolioStore(db, logger),
		transactionStore: NewTransactionStore(db, logger),
		priceStore:       NewMarketPriceStore(db, logger),
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// defineTables creates the tables and lookup indexes if missing.
// SurrealDB v3 errors on querying non-existent tables.
func defineTables(ctx context.Context, db *surrealdb.DB) error {
	stmts := []string{
		"DEFINE TABLE IF NOT EXISTS " + tablePortfolio + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableTransaction + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableMarketPrice + " SCHEMALESS",
		"DEFINE INDEX IF NOT EXISTS portfolio_user ON TABLE " + tablePortfolio + " COLUMNS user_id",
		"DEFINE INDEX IF NOT EXISTS transaction_portfolio ON TABLE " + tableTransaction + " COLUMNS portfolio_id",
	}
	for _, sql := range stmts {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to run %q: %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolioStore
}

func (m *Manager) TransactionStore() interfaces.TransactionStore {
	return m.transactionStore
}

func (m *Manager) MarketPriceStore() interfaces.MarketPriceStore {
	return m.priceStore
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// isNotFoundError reports driver errors that mean the record does not exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
