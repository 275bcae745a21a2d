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

// MarketPriceStore implements interfaces.MarketPriceStore, one record per symbol.
type MarketPriceStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMarketPriceStore(db *surrealdb.DB, logger *common.Logger) *MarketPriceStore {
	return &MarketPriceStore{db: db, logger: logger}
}

func (s *MarketPriceStore) GetPrice(ctx context.Context, symbol string) (*models.MarketPrice, error) {
	price, err := surrealdb.Select[models.MarketPrice](ctx, s.db, surrealmodels.NewRecordID(tableMarketPrice, symbol))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select market price: %w", err)
	}
	if err != nil || price == nil || price.Symbol == "" {
		return nil, fmt.Errorf("price %s: %w", symbol, models.ErrNotFound)
	}
	return price, nil
}

func (s *MarketPriceStore) SavePrice(ctx context.Context, price *models.MarketPrice) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(tableMarketPrice, price.Symbol),
		"record": price,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.MarketPrice](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save market price after retries: %w", lastErr)
}

func (s *MarketPriceStore) ListPrices(ctx context.Context) ([]*models.MarketPrice, error) {
	sql := "SELECT symbol, price, previous_close, manual, updated_at FROM " + tableMarketPrice + " ORDER BY symbol ASC"

	results, err := surrealdb.Query[[]models.MarketPrice](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list market prices: %w", err)
	}

	var out []*models.MarketPrice
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			out = append(out, &(*results)[0].Result[i])
		}
	}
	return out, nil
}

var _ interfaces.MarketPriceStore = (*MarketPriceStore)(nil)
