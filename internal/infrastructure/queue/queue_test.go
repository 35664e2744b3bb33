package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/analytics/domain"
)

func TestQueueDrainSwapsBatch(t *testing.T) {
	q := New()

	require.NoError(t, q.Enqueue(domain.Event{Action: domain.ActionProductView, UserID: "u1"}))
	require.NoError(t, q.Enqueue(domain.Event{Action: domain.ActionAddToCart, UserID: "u2"}))
	assert.Equal(t, 2, q.Len())

	batch := q.DrainAll()
	require.Len(t, batch, 2)
	assert.Equal(t, domain.ActionProductView, batch[0].Action)
	assert.Equal(t, domain.ActionAddToCart, batch[1].Action)
	assert.Equal(t, 0, q.Len())

	// events arriving after a drain belong to the next batch
	require.NoError(t, q.Enqueue(domain.Event{Action: domain.ActionPurchase, UserID: "u3"}))
	next := q.DrainAll()
	require.Len(t, next, 1)
	assert.Equal(t, domain.ActionPurchase, next[0].Action)
}

func TestQueueDrainEmpty(t *testing.T) {
	q := New()
	assert.Nil(t, q.DrainAll())
}

func TestQueueCloseRejectsEnqueue(t *testing.T) {
	q := New()
	require.NoError(t, q.Enqueue(domain.Event{Action: domain.ActionProductView}))
	q.Close()

	err := q.Enqueue(domain.Event{Action: domain.ActionProductView})
	assert.ErrorIs(t, err, domain.ErrQueueClosed)

	// buffered events stay drainable for the final flush
	assert.Len(t, q.DrainAll(), 1)
}
