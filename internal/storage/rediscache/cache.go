// Package rediscache implements the quote cache on Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const keyPrefix = "folio:quote:"

// Cache implements interfaces.QuoteCache with one JSON value per symbol, expired by Redis.
type Cache struct {
	rdb    *redis.Client
	logger *common.Logger
}

// NewCache connects to Redis and verifies the connection with a PING.
func NewCache(ctx context.Context, logger *common.Logger, cfg common.CacheConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddress, err)
	}
	logger.Info().Str("address", cfg.RedisAddress).Str("pong", pong).Msg("Redis quote cache connected")

	return &Cache{rdb: rdb, logger: logger}, nil
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(rdb *redis.Client, logger *common.Logger) *Cache {
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error) {
	res, err := c.rdb.Get(ctx, keyPrefix+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached quote: %w", err)
	}

	var q models.RealTimeQuote
	if err := json.Unmarshal(res, &q); err != nil {
		c.logger.Warn().Str("symbol", symbol).Err(err).Msg("Dropping unreadable cached quote")
		c.rdb.Del(ctx, keyPrefix+symbol)
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrNotFound)
	}
	return &q, nil
}

func (c *Cache) SetQuote(ctx context.Context, quote *models.RealTimeQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+quote.Code, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

var _ interfaces.QuoteCache = (*Cache)(nil)
