package redis

import (
	"context"
	"fmt"
	"strconv"

	redislib "github.com/redis/go-redis/v9"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/repository"
)

const (
	fieldViews           = "views"
	fieldCartAdds        = "cart_adds"
	fieldCartRemoves     = "cart_removes"
	fieldWishlistAdds    = "wishlist_adds"
	fieldWishlistRemoves = "wishlist_removes"
	fieldPurchases       = "purchases"
)

type counterRepository struct {
	client *redislib.Client
	prefix string
}

// NewCounterRepository creates a Redis-backed live counter mirror.
func NewCounterRepository(client *redislib.Client) repository.CounterRepository {
	return &counterRepository{
		client: client,
		prefix: "product:counters:",
	}
}

func (r *counterRepository) Apply(ctx context.Context, productID string, delta domain.CounterDelta) error {
	if productID == "" {
		return domain.ErrInvalidEvent
	}
	if delta.IsZero() {
		return nil
	}

	key := r.key(productID)
	pipe := r.client.Pipeline()
	for field, value := range map[string]int64{
		fieldViews:           delta.Views,
		fieldCartAdds:        delta.CartAdds,
		fieldCartRemoves:     delta.CartRemoves,
		fieldWishlistAdds:    delta.WishlistAdds,
		fieldWishlistRemoves: delta.WishlistRemoves,
		fieldPurchases:       delta.Purchases,
	} {
		if value != 0 {
			pipe.HIncrBy(ctx, key, field, value)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *counterRepository) Snapshot(ctx context.Context, productID string) (map[string]int64, error) {
	raw, err := r.client.HGetAll(ctx, r.key(productID)).Result()
	if err != nil {
		return nil, err
	}

	counters := make(map[string]int64, len(raw))
	for field, value := range raw {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counters[field] = parsed
	}
	return counters, nil
}

func (r *counterRepository) key(productID string) string {
	return fmt.Sprintf("%s%s", r.prefix, productID)
}
