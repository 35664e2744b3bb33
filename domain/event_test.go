package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{
			name:    "valid product view",
			payload: `{"action":"product_view","userId":"u1","productId":"p1","shopId":"s1"}`,
		},
		{
			name:    "valid without identifiers",
			payload: `{"action":"purchase"}`,
		},
		{
			name:    "shop visit is recognized",
			payload: `{"action":"shop_visit","shopId":"s1"}`,
		},
		{
			name:    "missing action",
			payload: `{"userId":"u1","productId":"p1"}`,
			wantErr: ErrMissingAction,
		},
		{
			name:    "unknown action",
			payload: `{"action":"page_scroll","userId":"u1"}`,
			wantErr: ErrUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.payload))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ev)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, ev)
			assert.True(t, ev.Action.Known())
		})
	}
}

func TestParseEventMalformedJSON(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"action":"product_view"`))
	assert.Nil(t, ev)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestDeltaFor(t *testing.T) {
	tests := []struct {
		action ActionKind
		want   CounterDelta
	}{
		{ActionProductView, CounterDelta{Views: 1}},
		{ActionAddToCart, CounterDelta{CartAdds: 1}},
		{ActionRemoveFromCart, CounterDelta{CartAdds: -1}},
		{ActionAddToWishlist, CounterDelta{WishlistAdds: 1}},
		{ActionRemoveFromWishlist, CounterDelta{WishlistAdds: -1}},
		{ActionPurchase, CounterDelta{Purchases: 1}},
		{ActionShopVisit, CounterDelta{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, DeltaFor(tt.action))
		})
	}
	assert.True(t, DeltaFor(ActionShopVisit).IsZero())
}
