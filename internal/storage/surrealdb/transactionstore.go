package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const transactionSelectFields = `transaction_id as id, portfolio_id, symbol, name, asset_class, type,
	quantity, unit_price, total_amount, date, notes, created_at`

// TransactionStore implements interfaces.TransactionStore using SurrealDB.
type TransactionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTransactionStore(db *surrealdb.DB, logger *common.Logger) *TransactionStore {
	return &TransactionStore{db: db, logger: logger}
}

func (s *TransactionStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	sql := "SELECT " + transactionSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableTransaction, id)}

	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if err != nil || results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

func (s *TransactionStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	sql := `UPSERT $rid SET
		transaction_id = $transaction_id, portfolio_id = $portfolio_id, symbol = $symbol,
		name = $name, asset_class = $asset_class, type = $type, quantity = $quantity,
		unit_price = $unit_price, total_amount = $total_amount, date = $date,
		notes = $notes, created_at = $created_at`
	vars := map[string]any{
		"rid":            surrealmodels.NewRecordID(tableTransaction, tx.ID),
		"transaction_id": tx.ID,
		"portfolio_id":   tx.PortfolioID,
		"symbol":         tx.Symbol,
		"name":           tx.Name,
		"asset_class":    string(tx.AssetClass),
		"type":           string(tx.Type),
		"quantity":       tx.Quantity,
		"unit_price":     tx.UnitPrice,
		"total_amount":   tx.TotalAmount,
		"date":           tx.Date,
		"notes":          tx.Notes,
		"created_at":     tx.CreatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (s *TransactionStore) DeleteTransaction(ctx context.Context, id string) error {
	sql := "DELETE $rid RETURN BEFORE"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableTransaction, id)}

	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, vars)
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if err != nil || results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *TransactionStore) ListTransactions(ctx context.Context, portfolioID string) ([]models.Transaction, error) {
	sql := "SELECT " + transactionSelectFields + " FROM " + tableTransaction +
		" WHERE portfolio_id = $portfolio_id ORDER BY date ASC, created_at ASC, id ASC"
	vars := map[string]any{"portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func (s *TransactionStore) DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error) {
	sql := "DELETE " + tableTransaction + " WHERE portfolio_id = $portfolio_id RETURN BEFORE"
	vars := map[string]any{"portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	count := 0
	if results != nil && len(*results) > 0 {
		count = len((*results)[0].Result)
	}
	s.logger.Debug().Str("portfolio_id", portfolioID).Int("count", count).Msg("Transactions deleted")
	return count, nil
}

var _ interfaces.TransactionStore = (*TransactionStore)(nil)
