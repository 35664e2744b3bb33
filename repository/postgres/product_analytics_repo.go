package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/repository"
)

type productAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewProductAnalyticsRepository instantiates a Postgres-backed product analytics repository.
func NewProductAnalyticsRepository(pool *pgxpool.Pool) repository.ProductAnalyticsRepository {
	return &productAnalyticsRepository{pool: pool}
}

func (r *productAnalyticsRepository) Get(ctx context.Context, productID string) (*domain.ProductAnalyticsRecord, error) {
	const query = `
		SELECT product_id, shop_id, views, cart_adds, cart_removes,
			wishlist_adds, wishlist_removes, purchases, last_viewed_at,
			created_at, updated_at
		FROM product_analytics
		WHERE product_id = $1
	`
	row := r.pool.QueryRow(ctx, query, productID)

	var record domain.ProductAnalyticsRecord
	if err := row.Scan(
		&record.ProductID,
		&record.ShopID,
		&record.Views,
		&record.CartAdds,
		&record.CartRemoves,
		&record.WishlistAdds,
		&record.WishlistRemoves,
		&record.Purchases,
		&record.LastViewedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductAnalyticsNotFound
		}
		return nil, err
	}

	return &record, nil
}

// Apply upserts the counter row in a single statement. On first sight the
// row is seeded with non-negative counters; subsequent deltas are applied
// raw, so an over-delivered decrement can drive a counter negative.
func (r *productAnalyticsRepository) Apply(ctx context.Context, productID, shopID string, delta domain.CounterDelta, seenAt time.Time) error {
	if productID == "" {
		return domain.ErrInvalidEvent
	}

	const query = `
	INSERT INTO product_analytics (
		product_id, shop_id, views, cart_adds, cart_removes,
		wishlist_adds, wishlist_removes, purchases, last_viewed_at,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	ON CONFLICT (product_id) DO UPDATE
	SET views = product_analytics.views + $10,
		cart_adds = product_analytics.cart_adds + $11,
		cart_removes = product_analytics.cart_removes + $12,
		wishlist_adds = product_analytics.wishlist_adds + $13,
		wishlist_removes = product_analytics.wishlist_removes + $14,
		purchases = product_analytics.purchases + $15,
		last_viewed_at = EXCLUDED.last_viewed_at,
		updated_at = NOW();
	`

	_, err := r.pool.Exec(ctx, query,
		productID,
		shopID,
		seedCounter(delta.Views),
		seedCounter(delta.CartAdds),
		seedCounter(delta.CartRemoves),
		seedCounter(delta.WishlistAdds),
		seedCounter(delta.WishlistRemoves),
		seedCounter(delta.Purchases),
		seenAt,
		delta.Views,
		delta.CartAdds,
		delta.CartRemoves,
		delta.WishlistAdds,
		delta.WishlistRemoves,
		delta.Purchases,
	)
	return err
}
