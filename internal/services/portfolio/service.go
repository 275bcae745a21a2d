// Package portfolio provides portfolio management services
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/spreadsheet"
	"github.com/bobmcallan/folio/internal/services/valuation"
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteService
	opts    valuation.Options
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service. The valuation options are taken
// from config; an unknown average-cost method is rejected here.
func NewService(
	storage interfaces.StorageManager,
	quotes interfaces.QuoteService,
	config common.ValuationConfig,
	logger *common.Logger,
) (*Service, error) {
	avg, err := valuation.AverageFuncByName(config.AverageCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		storage: storage,
		quotes:  quotes,
		opts: valuation.Options{
			AverageBuyPrice:       avg,
			IncludeClosedInTotals: config.IncludeClosedPositions,
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

// CreatePortfolio creates an empty portfolio owned by the calling user
func (s *Service) CreatePortfolio(ctx context.Context, name, description string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", models.ErrInvalidPortfolio)
	}

	now := s.now().UTC()
	p := &models.Portfolio{
		ID:          uuid.New().String(),
		UserID:      common.ResolveUserID(ctx),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().Str("portfolio", p.ID).Str("user", p.UserID).Str("name", name).Msg("Portfolio created")
	return p, nil
}

// GetPortfolio returns the portfolio if it belongs to the calling user.
// Another user's portfolio is reported as not found.
func (s *Service) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != common.ResolveUserID(ctx) {
		return nil, fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

// ListPortfolios returns the calling user's portfolios
func (s *Service) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().ListPortfolios(ctx, common.ResolveUserID(ctx))
}

// DeletePortfolio removes the portfolio and all of its transactions
func (s *Service) DeletePortfolio(ctx context.Context, id string) error {
	if _, err := s.GetPortfolio(ctx, id); err != nil {
		return err
	}

	removed, err := s.storage.TransactionStore().DeleteByPortfolio(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("portfolio", id).Int("transactions", removed).Msg("Portfolio deleted")
	return nil
}

// AddTransaction validates and records a transaction
func (s *Service) AddTransaction(ctx context.Context, portfolioID string, tx models.Transaction) (*models.Transaction, error) {
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	if err := normalizeTransaction(&tx); err != nil {
		return nil, err
	}

	saved, err := s.saveTransaction(ctx, portfolioID, tx)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, portfolioID)

	s.logger.Info().
		Str("portfolio", portfolioID).
		Str("symbol", saved.Symbol).
		Str("type", string(saved.Type)).
		Float64("amount", saved.TotalAmount).
		Msg("Transaction added")
	return saved, nil
}

// ListTransactions returns the ledger in date order, optionally for one symbol
func (s *Service) ListTransactions(ctx context.Context, portfolioID, symbol string) ([]models.Transaction, error) {
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	txs, err := s.storage.TransactionStore().ListTransactions(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return txs, nil
	}
	filtered := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Symbol == symbol {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

// DeleteTransaction removes one transaction from the portfolio
func (s *Service) DeleteTransaction(ctx context.Context, portfolioID, txID string) error {
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return err
	}
	tx, err := s.storage.TransactionStore().GetTransaction(ctx, txID)
	if err != nil {
		return err
	}
	if tx.PortfolioID != portfolioID {
		return fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	if err := s.storage.TransactionStore().DeleteTransaction(ctx, txID); err != nil {
		return err
	}
	s.touch(ctx, portfolioID)

	s.logger.Info().Str("portfolio", portfolioID).Str("transaction", txID).Msg("Transaction deleted")
	return nil
}

// GetPortfolioView values the portfolio at current prices
func (s *Service) GetPortfolioView(ctx context.Context, portfolioID string) (*models.PortfolioView, error) {
	p, err := s.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	txs, err := s.storage.TransactionStore().ListTransactions(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	book := valuation.Aggregate(txs, s.opts)
	active := book.Active()
	symbols := make([]string, 0, len(active))
	for _, pos := range active {
		symbols = append(symbols, pos.Symbol)
	}

	var quotes map[string]*models.RealTimeQuote
	if len(symbols) > 0 {
		quotes, err = s.quotes.GetQuotes(ctx, symbols)
		if err != nil {
			return nil, fmt.Errorf("failed to get quotes: %w", err)
		}
	}

	view := valuation.ValueHoldings(book, quotes, s.now(), s.opts)
	view.Portfolio = *p

	s.logger.Debug().
		Str("portfolio", portfolioID).
		Int("transactions", len(txs)).
		Int("holdings", len(view.Holdings)).
		Int("quoted", len(quotes)).
		Float64("value", view.Totals.CurrentValue).
		Msg("Portfolio valued")
	return &view, nil
}

// RenderAllocationChart draws the asset allocation as a PNG
func (s *Service) RenderAllocationChart(ctx context.Context, portfolioID string) ([]byte, error) {
	view, err := s.GetPortfolioView(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return RenderAllocationChart(view.AssetAllocation)
}

// ImportTransactions reads a spreadsheet and records every row. Rows are all
// validated before any is stored, and rows already saved are removed again if
// a later save fails.
func (s *Service) ImportTransactions(ctx context.Context, portfolioID, format string, r io.Reader) (int, error) {
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return 0, err
	}
	f, err := spreadsheet.ParseFormat(format)
	if err != nil {
		return 0, err
	}

	txs, err := spreadsheet.Read(r, f)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedFormat) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidTransaction, err)
	}
	for i := range txs {
		if err := normalizeTransaction(&txs[i]); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	saved := make([]string, 0, len(txs))
	for i, tx := range txs {
		stored, err := s.saveTransaction(ctx, portfolioID, tx)
		if err != nil {
			s.rollbackImport(ctx, portfolioID, saved)
			return 0, fmt.Errorf("entry %d: %w", i+1, err)
		}
		saved = append(saved, stored.ID)
	}
	s.touch(ctx, portfolioID)

	s.logger.Info().Str("portfolio", portfolioID).Str("format", string(f)).Int("count", len(txs)).Msg("Transactions imported")
	return len(txs), nil
}

// rollbackImport deletes transactions saved by a failed import. Delete errors are
// logged since the original save error is what the caller sees.
func (s *Service) rollbackImport(ctx context.Context, portfolioID string, ids []string) {
	for _, id := range ids {
		if err := s.storage.TransactionStore().DeleteTransaction(ctx, id); err != nil {
			s.logger.Warn().Str("portfolio", portfolioID).Str("transaction", id).Err(err).Msg("Failed to roll back imported transaction")
		}
	}
	s.logger.Warn().Str("portfolio", portfolioID).Int("rolled_back", len(ids)).Msg("Import aborted")
}

// ExportTransactions writes the ledger as a spreadsheet
func (s *Service) ExportTransactions(ctx context.Context, portfolioID, format string, w io.Writer) error {
	f, err := spreadsheet.ParseFormat(format)
	if err != nil {
		return err
	}
	txs, err := s.ListTransactions(ctx, portfolioID, "")
	if err != nil {
		return err
	}
	return spreadsheet.Write(w, f, txs)
}

func (s *Service) saveTransaction(ctx context.Context, portfolioID string, tx models.Transaction) (*models.Transaction, error) {
	tx.ID = uuid.New().String()
	tx.PortfolioID = portfolioID
	tx.CreatedAt = s.now().UTC()
	if err := s.storage.TransactionStore().SaveTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return &tx, nil
}

// touch bumps the portfolio's UpdatedAt. Failure is logged, not returned.
func (s *Service) touch(ctx context.Context, portfolioID string) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, portfolioID)
	if err != nil {
		return
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		s.logger.Warn().Str("portfolio", portfolioID).Err(err).Msg("Failed to update portfolio timestamp")
	}
}

// normalizeTransaction rejects malformed input and fills derived fields.
// The aggregator assumes every stored transaction passed through here.
func normalizeTransaction(tx *models.Transaction) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), models.ErrInvalidTransaction)
	}

	tx.Symbol = strings.ToUpper(strings.TrimSpace(tx.Symbol))
	if tx.Symbol == "" {
		return invalid("symbol is required")
	}
	txType, ok := models.ParseTransactionType(string(tx.Type))
	if !ok {
		return invalid("type %q must be buy, sell or dividend", tx.Type)
	}
	tx.Type = txType
	if tx.Date.IsZero() {
		return invalid("date is required")
	}
	tx.Date = models.TruncateToDay(tx.Date)
	tx.Name = strings.TrimSpace(tx.Name)
	tx.Notes = strings.TrimSpace(tx.Notes)

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"quantity", tx.Quantity},
		{"unit_price", tx.UnitPrice},
		{"total_amount", tx.TotalAmount},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return invalid("%s must be a non-negative number", f.name)
		}
	}

	switch tx.Type {
	case models.TransactionBuy, models.TransactionSell:
		if tx.Quantity <= 0 {
			return invalid("%s needs a positive quantity", tx.Type)
		}
		if tx.TotalAmount == 0 {
			tx.TotalAmount = tx.Quantity * tx.UnitPrice
		}
		if tx.UnitPrice == 0 && tx.TotalAmount > 0 {
			tx.UnitPrice = tx.TotalAmount / tx.Quantity
		}
	case models.TransactionDividend:
		if tx.TotalAmount == 0 {
			tx.TotalAmount = tx.Quantity * tx.UnitPrice
		}
		if tx.TotalAmount <= 0 {
			return invalid("dividend needs a positive amount")
		}
	}
	return nil
}

var _ interfaces.PortfolioService = (*Service)(nil)
