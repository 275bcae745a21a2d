// Package storage selects the storage and cache backends from configuration.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/storage/memory"
	"github.com/bobmcallan/folio/internal/storage/rediscache"
	"github.com/bobmcallan/folio/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendMemory    = "memory"
	BackendSurrealDB = "surrealdb"
	BackendRedis     = "redis"
)

// NewStorageManager creates the StorageManager named by config.Storage.Backend.
func NewStorageManager(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	switch strings.ToLower(config.Storage.Backend) {
	case "", BackendMemory:
		return memory.NewManager(logger), nil
	case BackendSurrealDB:
		return surrealdb.NewManager(ctx, logger, config)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, surrealdb)", config.Storage.Backend)
	}
}

// NewQuoteCache creates the QuoteCache named by config.Cache.Backend.
func NewQuoteCache(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.QuoteCache, error) {
	switch strings.ToLower(config.Cache.Backend) {
	case "", BackendMemory:
		return memory.NewQuoteCache(), nil
	case BackendRedis:
		return rediscache.NewCache(ctx, logger, config.Cache)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, redis)", config.Cache.Backend)
	}
}
