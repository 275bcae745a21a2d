// Package app wires configuration, storage, clients and services into one App
// shared by the HTTP server and its tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/eodhd"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/quote"
	"github.com/bobmcallan/folio/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	QuoteCache       interfaces.QuoteCache
	QuoteClient      interfaces.QuoteClient
	QuoteService     interfaces.QuoteService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the quote cache, the EODHD client and services.
// configPath may be empty, in which case FOLIO_CONFIG, then folio.toml next to
// the binary, then config/folio.toml are tried.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	ctx := context.Background()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	quoteCache, err := storage.NewQuoteCache(ctx, logger, config)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize quote cache: %w", err)
	}

	// A nil interface, not a typed nil, when no key is configured.
	var quoteClient interfaces.QuoteClient
	if key := config.Clients.EODHD.APIKey; key != "" {
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		}
		if config.Clients.EODHD.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(config.Clients.EODHD.BaseURL))
		}
		quoteClient = eodhd.NewClient(key, opts...)
	} else {
		logger.Warn().Msg("EODHD API key not configured - only stored and manual prices will be used")
	}

	quoteService := quote.NewService(quoteClient, quoteCache, storageManager, config.Cache.GetTTL(), logger)
	portfolioService, err := portfolio.NewService(storageManager, quoteService, config.Valuation, logger)
	if err != nil {
		quoteCache.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize portfolio service: %w", err)
	}

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteCache:       quoteCache,
		QuoteClient:      quoteClient,
		QuoteService:     quoteService,
		PortfolioService: portfolioService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close cache, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.QuoteCache != nil {
		a.QuoteCache.Close()
		a.QuoteCache = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartPriceScheduler launches the background price refresh goroutine.
// It does nothing when the interval is zero or no quote client is configured.
func (a *App) StartPriceScheduler() {
	interval := a.Config.Scheduler.GetPriceRefreshInterval()
	if interval <= 0 || a.QuoteClient == nil {
		a.Logger.Info().Msg("Price scheduler: disabled")
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startPriceScheduler(schedulerCtx, a.QuoteService, a.Logger, interval)
}
