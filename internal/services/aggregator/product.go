package aggregator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/repository"
)

// ProductAggregator maintains running interaction counters per product.
// Events without a product id, or whose action maps to no counter, are
// ignored.
type ProductAggregator struct {
	repo     repository.ProductAnalyticsRepository
	counters repository.CounterRepository
	logger   *zap.Logger
}

// NewProductAggregator creates a product analytics aggregator. The counter
// repository is optional; when present, applied deltas are mirrored into
// it for live dashboards.
func NewProductAggregator(
	repo repository.ProductAnalyticsRepository,
	counters repository.CounterRepository,
	logger *zap.Logger,
) *ProductAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductAggregator{
		repo:     repo,
		counters: counters,
		logger:   logger,
	}
}

func (a *ProductAggregator) Name() string { return "product" }

// Aggregate applies one event's counter delta to the product's record.
func (a *ProductAggregator) Aggregate(ctx context.Context, ev domain.Event) *domain.AggregationError {
	if ev.ProductID == "" {
		return nil
	}

	delta := domain.DeltaFor(ev.Action)
	if delta.IsZero() {
		return nil
	}

	if err := a.repo.Apply(ctx, ev.ProductID, ev.ShopID, delta, time.Now()); err != nil {
		return domain.NewAggregationError(a.Name(), err)
	}

	// the mirror is best-effort; a cache failure must not fail the event
	if a.counters != nil {
		if err := a.counters.Apply(ctx, ev.ProductID, delta); err != nil {
			a.logger.Warn("live counter mirror failed",
				zap.String("product_id", ev.ProductID),
				zap.Error(err))
		}
	}
	return nil
}
