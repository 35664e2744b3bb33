package deadletter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/analytics/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "deadletter.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStorePutAndList(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(Record{
		Stage:  "user",
		Reason: "connection reset",
		Event:  domain.Event{Action: domain.ActionProductView, UserID: "u1"},
	}))
	require.NoError(t, store.Put(Record{
		Stage:  "product",
		Reason: "constraint violation",
		Event:  domain.Event{Action: domain.ActionAddToCart, ProductID: "p1"},
	}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	records, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "user", records[0].Stage)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.Equal(t, "u1", records[0].Event.UserID)
}

func TestStoreRemove(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(Record{Stage: "user", Reason: "x"}))
	records, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, store.Remove(records[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStoreCleanup(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(Record{Stage: "user", Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Put(Record{Stage: "user"}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}
