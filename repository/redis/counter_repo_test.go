package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/analytics/domain"
)

func newTestRepo(t *testing.T) (*counterRepository, *redislib.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &counterRepository{client: client, prefix: "product:counters:"}, client
}

func TestCounterApplyAndSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Apply(ctx, "p1", domain.CounterDelta{Views: 1}))
	require.NoError(t, repo.Apply(ctx, "p1", domain.CounterDelta{Views: 1, CartAdds: 1}))

	counters, err := repo.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counters[fieldViews])
	assert.Equal(t, int64(1), counters[fieldCartAdds])
}

func TestCounterApplyNegativeDelta(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Apply(ctx, "p1", domain.CounterDelta{CartAdds: -1}))

	counters, err := repo.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), counters[fieldCartAdds])
}

func TestCounterApplyZeroDeltaWritesNothing(t *testing.T) {
	repo, client := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Apply(ctx, "p1", domain.CounterDelta{}))

	exists, err := client.Exists(ctx, "product:counters:p1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestCounterApplyRequiresProductID(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.Error(t, repo.Apply(context.Background(), "", domain.CounterDelta{Views: 1}))
}
