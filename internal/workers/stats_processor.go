// internal/workers/stats_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/takeoneapp/takeone-be/internal/core/ports"
	"github.com/takeoneapp/takeone-be/internal/core/services"
)

// StatsProcessor rewarms the cached dashboard aggregates so the first
// request after an invalidation doesn't pay for the aggregation queries.
type StatsProcessor struct {
	items  ports.ItemRepository
	sales  ports.SaleRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewStatsProcessor creates a new stats processor
func NewStatsProcessor(items ports.ItemRepository, sales ports.SaleRepository, cache ports.CacheRepository, logger *slog.Logger) *StatsProcessor {
	return &StatsProcessor{
		items:  items,
		sales:  sales,
		cache:  cache,
		logger: logger.With(slog.String("processor", "stats")),
	}
}

// RefreshStats recomputes the aggregates and replaces the cached copy
func (p *StatsProcessor) RefreshStats(ctx context.Context, t *asynq.Task) error {
	stats, err := p.items.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	soldCount, err := p.sales.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sales: %w", err)
	}
	stats.TotalSales = soldCount

	if err := p.cache.SetWithTTL(ctx, services.StatsCacheKey, stats, services.StatsCacheTTL); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}

	p.logger.InfoContext(ctx, "stats cache refreshed",
		slog.Int64("total_items", stats.TotalItems),
		slog.Int64("total_quantity", stats.TotalQuantity))

	return nil
}
