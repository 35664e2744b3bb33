package repository

import (
	"context"
	"time"

	"github.com/bazarly/analytics/domain"
)

// UserAnalyticsRepository persists per-user action histories, keyed by
// user id.
type UserAnalyticsRepository interface {
	Get(ctx context.Context, userID string) (*domain.UserAnalyticsRecord, error)
	Upsert(ctx context.Context, record *domain.UserAnalyticsRecord) error
}

// ProductAnalyticsRepository persists per-product counters, keyed by
// product id. Apply creates the record on first sight (shopID and seed
// counters) and adjusts counters on subsequent calls.
type ProductAnalyticsRepository interface {
	Get(ctx context.Context, productID string) (*domain.ProductAnalyticsRecord, error)
	Apply(ctx context.Context, productID, shopID string, delta domain.CounterDelta, seenAt time.Time) error
}

// CounterRepository mirrors product counter adjustments into a low-latency
// store for live dashboards.
type CounterRepository interface {
	Apply(ctx context.Context, productID string, delta domain.CounterDelta) error
	Snapshot(ctx context.Context, productID string) (map[string]int64, error)
}
