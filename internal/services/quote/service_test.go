package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/storage/memory"
)

// --- Mocks ---

type mockQuoteClient struct {
	quotes map[string]*models.RealTimeQuote
	err    error
	calls  []string
}

func (m *mockQuoteClient) GetRealTimeQuote(_ context.Context, symbol string) (*models.RealTimeQuote, error) {
	m.calls = append(m.calls, symbol)
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return nil, models.ErrNoQuote
	}
	cp := *q
	return &cp, nil
}

var testNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newTestService(client *mockQuoteClient) (*Service, *memory.Manager) {
	store := memory.NewManager(common.NewSilentLogger())
	var svc *Service
	if client != nil {
		svc = NewService(client, memory.NewQuoteCache(), store, time.Minute, common.NewSilentLogger())
	} else {
		svc = NewService(nil, memory.NewQuoteCache(), store, time.Minute, common.NewSilentLogger())
	}
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestGetQuote_LiveIsStoredAndCached(t *testing.T) {
	client := &mockQuoteClient{quotes: map[string]*models.RealTimeQuote{
		"INFY.NSE": {Code: "INFY.NSE", Close: 1500, PreviousClose: 1480},
	}}
	svc, store := newTestService(client)
	ctx := context.Background()

	q, err := svc.GetQuote(ctx, " infy.nse ")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, q.Close)
	assert.Equal(t, models.PriceSourceLive, q.Source)

	stored, err := store.MarketPriceStore().GetPrice(ctx, "INFY.NSE")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, stored.Price)
	assert.False(t, stored.Manual)

	// Second call is served from cache.
	_, err = svc.GetQuote(ctx, "INFY.NSE")
	require.NoError(t, err)
	assert.Len(t, client.calls, 1)
}

func TestGetQuote_FreshStoredPriceSkipsFeed(t *testing.T) {
	client := &mockQuoteClient{}
	svc, store := newTestService(client)
	ctx := context.Background()
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "TCS.NSE", Price: 3900, UpdatedAt: testNow.Add(-5 * time.Minute)}))

	q, err := svc.GetQuote(ctx, "TCS.NSE")
	require.NoError(t, err)
	assert.Equal(t, 3900.0, q.Close)
	assert.Equal(t, models.PriceSourceStored, q.Source)
	assert.Empty(t, client.calls)
}

func TestGetQuote_StaleStoredPriceIsFallback(t *testing.T) {
	client := &mockQuoteClient{err: errors.New("feed down")}
	svc, store := newTestService(client)
	ctx := context.Background()
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "TCS.NSE", Price: 3800, UpdatedAt: testNow.Add(-48 * time.Hour)}))

	q, err := svc.GetQuote(ctx, "TCS.NSE")
	require.NoError(t, err)
	assert.Equal(t, 3800.0, q.Close)
	assert.Equal(t, []string{"TCS.NSE"}, client.calls)
}

func TestGetQuote_ManualPriceWins(t *testing.T) {
	client := &mockQuoteClient{quotes: map[string]*models.RealTimeQuote{"FD-SBI": {Close: 1}}}
	svc, store := newTestService(client)
	ctx := context.Background()
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "FD-SBI", Price: 105000, Manual: true, UpdatedAt: testNow.AddDate(-1, 0, 0)}))

	q, err := svc.GetQuote(ctx, "FD-SBI")
	require.NoError(t, err)
	assert.Equal(t, 105000.0, q.Close)
	assert.Empty(t, client.calls)
}

func TestGetQuote_NothingAvailable(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.GetQuote(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, models.ErrNoQuote)
}

func TestGetQuotes_SkipsFailuresAndDedupes(t *testing.T) {
	client := &mockQuoteClient{quotes: map[string]*models.RealTimeQuote{
		"A": {Close: 10},
		"B": {Close: 20},
	}}
	svc, _ := newTestService(client)

	quotes, err := svc.GetQuotes(context.Background(), []string{"A", "a", "B", "MISSING", ""})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, 10.0, quotes["A"].Close)
	assert.Equal(t, 20.0, quotes["B"].Close)
	assert.Equal(t, []string{"A", "B", "MISSING"}, client.calls)
}

func TestGetQuotes_ContextCancelled(t *testing.T) {
	svc, _ := newTestService(&mockQuoteClient{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GetQuotes(ctx, []string{"A"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetManualPrice(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()

	mp, err := svc.SetManualPrice(ctx, "house-1", 450000, 440000)
	require.NoError(t, err)
	assert.Equal(t, "HOUSE-1", mp.Symbol)
	assert.True(t, mp.Manual)
	assert.True(t, mp.UpdatedAt.Equal(testNow))

	stored, err := store.MarketPriceStore().GetPrice(ctx, "HOUSE-1")
	require.NoError(t, err)
	assert.Equal(t, 450000.0, stored.Price)

	q, err := svc.GetQuote(ctx, "HOUSE-1")
	require.NoError(t, err)
	assert.InDelta(t, 2.2727, q.ChangePct, 1e-3)

	for _, bad := range []float64{0, -1} {
		_, err := svc.SetManualPrice(ctx, "X", bad, 0)
		assert.ErrorIs(t, err, models.ErrInvalidPrice)
	}
	_, err = svc.SetManualPrice(ctx, "X", 1, -1)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
	_, err = svc.SetManualPrice(ctx, " ", 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestRefreshPrices(t *testing.T) {
	client := &mockQuoteClient{quotes: map[string]*models.RealTimeQuote{
		"A": {Close: 11, PreviousClose: 10},
	}}
	svc, store := newTestService(client)
	ctx := context.Background()
	old := testNow.Add(-time.Hour)
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "A", Price: 10, UpdatedAt: old}))
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "B", Price: 5, UpdatedAt: old}))
	require.NoError(t, store.MarketPriceStore().SavePrice(ctx, &models.MarketPrice{Symbol: "M", Price: 99, Manual: true, UpdatedAt: old}))

	n, err := svc.RefreshPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"A", "B"}, client.calls)

	a, _ := store.MarketPriceStore().GetPrice(ctx, "A")
	assert.Equal(t, 11.0, a.Price)
	assert.True(t, a.UpdatedAt.Equal(testNow))
	m, _ := store.MarketPriceStore().GetPrice(ctx, "M")
	assert.Equal(t, 99.0, m.Price)
}

func TestRefreshPrices_NoClient(t *testing.T) {
	svc, _ := newTestService(nil)
	n, err := svc.RefreshPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
