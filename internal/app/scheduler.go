package app

import (
	"context"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// startPriceScheduler refreshes stored market prices on a fixed interval.
func startPriceScheduler(ctx context.Context, quoteService interfaces.QuoteService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Price scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Price scheduler: stopped")
			return
		case <-ticker.C:
			refreshPrices(ctx, quoteService, logger)
		}
	}
}

func refreshPrices(ctx context.Context, quoteService interfaces.QuoteService, logger *common.Logger) {
	start := time.Now()

	n, err := quoteService.RefreshPrices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: failed")
		return
	}

	logger.Info().
		Int("symbols", n).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}
