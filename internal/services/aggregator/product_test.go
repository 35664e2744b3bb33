package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/analytics/domain"
)

// fakeProductRepo reproduces the upsert semantics of the Postgres
// repository: creation seeds are floored at zero, later deltas apply raw.
type fakeProductRepo struct {
	records  map[string]*domain.ProductAnalyticsRecord
	applyErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{records: make(map[string]*domain.ProductAnalyticsRecord)}
}

func (f *fakeProductRepo) Get(_ context.Context, productID string) (*domain.ProductAnalyticsRecord, error) {
	record, ok := f.records[productID]
	if !ok {
		return nil, domain.ErrProductAnalyticsNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeProductRepo) Apply(_ context.Context, productID, shopID string, delta domain.CounterDelta, seenAt time.Time) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	record, ok := f.records[productID]
	if !ok {
		f.records[productID] = &domain.ProductAnalyticsRecord{
			ProductID:       productID,
			ShopID:          shopID,
			Views:           seed(delta.Views),
			CartAdds:        seed(delta.CartAdds),
			CartRemoves:     seed(delta.CartRemoves),
			WishlistAdds:    seed(delta.WishlistAdds),
			WishlistRemoves: seed(delta.WishlistRemoves),
			Purchases:       seed(delta.Purchases),
			LastViewedAt:    seenAt,
		}
		return nil
	}
	record.Views += delta.Views
	record.CartAdds += delta.CartAdds
	record.CartRemoves += delta.CartRemoves
	record.WishlistAdds += delta.WishlistAdds
	record.WishlistRemoves += delta.WishlistRemoves
	record.Purchases += delta.Purchases
	record.LastViewedAt = seenAt
	return nil
}

func seed(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

type fakeCounterRepo struct {
	applied  []domain.CounterDelta
	applyErr error
}

func (f *fakeCounterRepo) Apply(_ context.Context, _ string, delta domain.CounterDelta) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, delta)
	return nil
}

func (f *fakeCounterRepo) Snapshot(_ context.Context, _ string) (map[string]int64, error) {
	return nil, nil
}

func TestProductAggregatorSkipsEventsWithoutProductID(t *testing.T) {
	repo := newFakeProductRepo()
	agg := NewProductAggregator(repo, nil, nil)

	aerr := agg.Aggregate(context.Background(), domain.Event{
		Action: domain.ActionProductView,
		UserID: "u1",
	})

	assert.Nil(t, aerr)
	assert.Empty(t, repo.records)
}

func TestProductAggregatorSeedsFreshRecord(t *testing.T) {
	repo := newFakeProductRepo()
	agg := NewProductAggregator(repo, nil, nil)

	aerr := agg.Aggregate(context.Background(), domain.Event{
		Action:    domain.ActionProductView,
		ProductID: "p1",
		ShopID:    "s1",
	})
	require.Nil(t, aerr)

	record := repo.records["p1"]
	require.NotNil(t, record)
	assert.Equal(t, "s1", record.ShopID)
	assert.Equal(t, int64(1), record.Views)
	assert.False(t, record.LastViewedAt.IsZero())
}

func TestProductAggregatorCartAddThenRemoveBalances(t *testing.T) {
	repo := newFakeProductRepo()
	agg := NewProductAggregator(repo, nil, nil)
	ctx := context.Background()

	require.Nil(t, agg.Aggregate(ctx, domain.Event{Action: domain.ActionAddToCart, ProductID: "p1"}))
	require.Nil(t, agg.Aggregate(ctx, domain.Event{Action: domain.ActionRemoveFromCart, ProductID: "p1"}))

	assert.Equal(t, int64(0), repo.records["p1"].CartAdds)
}

func TestProductAggregatorCountersGoNegative(t *testing.T) {
	repo := newFakeProductRepo()
	agg := NewProductAggregator(repo, nil, nil)
	ctx := context.Background()

	// first removal seeds at zero, the second drives the counter negative;
	// this mirrors the storage layer's unclamped update path
	require.Nil(t, agg.Aggregate(ctx, domain.Event{Action: domain.ActionRemoveFromCart, ProductID: "p1"}))
	require.Nil(t, agg.Aggregate(ctx, domain.Event{Action: domain.ActionRemoveFromCart, ProductID: "p1"}))

	assert.Equal(t, int64(-1), repo.records["p1"].CartAdds)
}

func TestProductAggregatorIgnoresShopVisit(t *testing.T) {
	repo := newFakeProductRepo()
	agg := NewProductAggregator(repo, nil, nil)

	aerr := agg.Aggregate(context.Background(), domain.Event{
		Action:    domain.ActionShopVisit,
		ProductID: "p1",
		ShopID:    "s1",
	})

	assert.Nil(t, aerr)
	assert.Empty(t, repo.records)
}

func TestProductAggregatorMirrorsDeltas(t *testing.T) {
	repo := newFakeProductRepo()
	counters := &fakeCounterRepo{}
	agg := NewProductAggregator(repo, counters, nil)

	require.Nil(t, agg.Aggregate(context.Background(), domain.Event{
		Action:    domain.ActionPurchase,
		ProductID: "p1",
	}))

	require.Len(t, counters.applied, 1)
	assert.Equal(t, int64(1), counters.applied[0].Purchases)
}

func TestProductAggregatorMirrorFailureIsNotFatal(t *testing.T) {
	repo := newFakeProductRepo()
	counters := &fakeCounterRepo{applyErr: domain.NewError(domain.ErrCodeStorage, "redis down")}
	agg := NewProductAggregator(repo, counters, nil)

	aerr := agg.Aggregate(context.Background(), domain.Event{
		Action:    domain.ActionProductView,
		ProductID: "p1",
	})

	assert.Nil(t, aerr)
	assert.Equal(t, int64(1), repo.records["p1"].Views)
}

func TestProductAggregatorReportsStorageFailure(t *testing.T) {
	repo := newFakeProductRepo()
	repo.applyErr = domain.NewError(domain.ErrCodeStorage, "connection reset")
	agg := NewProductAggregator(repo, nil, nil)

	aerr := agg.Aggregate(context.Background(), domain.Event{
		Action:    domain.ActionProductView,
		ProductID: "p1",
	})
	require.NotNil(t, aerr)
	assert.Equal(t, "product", aerr.Stage)
}
