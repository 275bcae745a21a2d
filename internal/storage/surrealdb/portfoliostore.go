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

const portfolioSelectFields = `portfolio_id as id, user_id, name, description, created_at, updated_at`

// PortfolioStore implements interfaces.PortfolioStore using SurrealDB.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{db: db, logger: logger}
}

func (s *PortfolioStore) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	sql := "SELECT " + portfolioSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tablePortfolio, id)}

	results, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars)
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	if err != nil || results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

func (s *PortfolioStore) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	sql := `UPSERT $rid SET
		portfolio_id = $portfolio_id, user_id = $user_id, name = $name,
		description = $description, created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":          surrealmodels.NewRecordID(tablePortfolio, p.ID),
		"portfolio_id": p.ID,
		"user_id":      p.UserID,
		"name":         p.Name,
		"description":  p.Description,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save portfolio after retries: %w", lastErr)
}

func (s *PortfolioStore) DeletePortfolio(ctx context.Context, id string) error {
	sql := "DELETE $rid RETURN BEFORE"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tablePortfolio, id)}

	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, vars)
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if err != nil || results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *PortfolioStore) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	sql := "SELECT " + portfolioSelectFields + " FROM " + tablePortfolio + " WHERE user_id = $user_id ORDER BY name ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	var out []*models.Portfolio
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			out = append(out, &(*results)[0].Result[i])
		}
	}
	return out, nil
}

var _ interfaces.PortfolioStore = (*PortfolioStore)(nil)
