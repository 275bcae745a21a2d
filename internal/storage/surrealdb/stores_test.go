package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
)

func TestPortfolioStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewPortfolioStore(db, testLogger())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := &models.Portfolio{ID: "p1", UserID: "alice", Name: "Growth", Description: "long term", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SavePortfolio(ctx, p))
	require.NoError(t, store.SavePortfolio(ctx, &models.Portfolio{ID: "p2", UserID: "alice", Name: "Bonds", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.SavePortfolio(ctx, &models.Portfolio{ID: "p3", UserID: "bob", Name: "Other", CreatedAt: now, UpdatedAt: now}))

	got, err := store.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "long term", got.Description)
	assert.True(t, got.CreatedAt.Equal(now))

	list, err := store.ListPortfolios(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bonds", list[0].Name)
	assert.Equal(t, "Growth", list[1].Name)

	require.NoError(t, store.DeletePortfolio(ctx, "p1"))
	_, err = store.GetPortfolio(ctx, "p1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, store.DeletePortfolio(ctx, "p1"), models.ErrNotFound)
}

func TestTransactionStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewTransactionStore(db, testLogger())
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Second)
	date := func(s string) time.Time { d, _ := models.ParseDate(s); return d }

	txs := []*models.Transaction{
		{ID: "t3", PortfolioID: "p", Symbol: "INFY", Type: models.TransactionSell, Quantity: 2, UnitPrice: 1600, TotalAmount: 3200, Date: date("2024-03-01"), CreatedAt: created},
		{ID: "t1", PortfolioID: "p", Symbol: "INFY", Name: "Infosys", AssetClass: models.AssetStock, Type: models.TransactionBuy, Quantity: 10, UnitPrice: 1500, TotalAmount: 15000, Date: date("2024-01-01"), Notes: "first", CreatedAt: created},
		{ID: "t2", PortfolioID: "p", Symbol: "INFY", Type: models.TransactionDividend, TotalAmount: 180, Date: date("2024-02-01"), CreatedAt: created},
		{ID: "x1", PortfolioID: "other", Symbol: "TCS", Type: models.TransactionBuy, Quantity: 1, UnitPrice: 3900, TotalAmount: 3900, Date: date("2024-01-01"), CreatedAt: created},
	}
	for _, tx := range txs {
		require.NoError(t, store.SaveTransaction(ctx, tx))
	}

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Infosys", got.Name)
	assert.Equal(t, models.AssetStock, got.AssetClass)
	assert.Equal(t, models.TransactionBuy, got.Type)
	assert.Equal(t, 15000.0, got.TotalAmount)
	assert.True(t, got.Date.Equal(date("2024-01-01")))

	list, err := store.ListTransactions(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "t1", list[0].ID)
	assert.Equal(t, "t2", list[1].ID)
	assert.Equal(t, "t3", list[2].ID)

	require.NoError(t, store.DeleteTransaction(ctx, "t2"))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "t2"), models.ErrNotFound)

	n, err := store.DeleteByPortfolio(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err = store.ListTransactions(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarketPriceStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewMarketPriceStore(db, testLogger())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := store.GetPrice(ctx, "INFY.NSE")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, store.SavePrice(ctx, &models.MarketPrice{Symbol: "INFY.NSE", Price: 1500, PreviousClose: 1490, UpdatedAt: now}))
	require.NoError(t, store.SavePrice(ctx, &models.MarketPrice{Symbol: "FD-HDFC", Price: 105000, Manual: true, UpdatedAt: now}))
	require.NoError(t, store.SavePrice(ctx, &models.MarketPrice{Symbol: "INFY.NSE", Price: 1510, PreviousClose: 1500, UpdatedAt: now}))

	p, err := store.GetPrice(ctx, "INFY.NSE")
	require.NoError(t, err)
	assert.Equal(t, 1510.0, p.Price)
	assert.Equal(t, 1500.0, p.PreviousClose)

	all, err := store.ListPrices(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FD-HDFC", all[0].Symbol)
	assert.True(t, all[0].Manual)
}
