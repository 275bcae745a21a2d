package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	tcommon "github.com/bobmcallan/folio/tests/common"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	rc := tcommon.StartRedis(t)

	c, err := NewCache(context.Background(), common.NewSilentLogger(), common.CacheConfig{RedisAddress: rc.Address()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC)

	_, err := c.GetQuote(ctx, "MISSING.NSE")
	assert.ErrorIs(t, err, models.ErrNotFound)

	q := &models.RealTimeQuote{Code: "INFY.NSE", Close: 1502.25, PreviousClose: 1480, ChangePct: 1.5, Timestamp: ts, Source: models.PriceSourceLive}
	require.NoError(t, c.SetQuote(ctx, q, time.Minute))

	got, err := c.GetQuote(ctx, "INFY.NSE")
	require.NoError(t, err)
	assert.Equal(t, 1502.25, got.Close)
	assert.Equal(t, 1480.0, got.PreviousClose)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, models.PriceSourceLive, got.Source)
}

func TestCache_Expires(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetQuote(ctx, &models.RealTimeQuote{Code: "TCS.NSE", Close: 3900}, 100*time.Millisecond))
	time.Sleep(300 * time.Millisecond)

	_, err := c.GetQuote(ctx, "TCS.NSE")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCache_UnreadableValueIsMiss(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.rdb.Set(ctx, keyPrefix+"BAD", "not json", time.Minute).Err())
	_, err := c.GetQuote(ctx, "BAD")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
