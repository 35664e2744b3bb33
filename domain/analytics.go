package domain

import "time"

// MaxUserActions caps the per-user action history. Older entries are
// dropped first.
const MaxUserActions = 100

// UserAction is one entry in a user's recorded action history.
type UserAction struct {
	ProductID string     `json:"productId,omitempty"`
	ShopID    string     `json:"shopId,omitempty"`
	Action    ActionKind `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
}

// UserAnalyticsRecord holds the bounded, deduplicated action history for
// one user, plus the last known context fields.
type UserAnalyticsRecord struct {
	UserID      string       `json:"user_id"`
	LastVisited time.Time    `json:"last_visited"`
	Actions     []UserAction `json:"actions"`
	Country     string       `json:"country,omitempty"`
	City        string       `json:"city,omitempty"`
	Device      string       `json:"device,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ProductAnalyticsRecord holds running interaction counters for one
// product. Counters are signed and never clamped at zero once created.
type ProductAnalyticsRecord struct {
	ProductID       string    `json:"product_id"`
	ShopID          string    `json:"shop_id,omitempty"`
	Views           int64     `json:"views"`
	CartAdds        int64     `json:"cart_adds"`
	CartRemoves     int64     `json:"cart_removes"`
	WishlistAdds    int64     `json:"wishlist_adds"`
	WishlistRemoves int64     `json:"wishlist_removes"`
	Purchases       int64     `json:"purchases"`
	LastViewedAt    time.Time `json:"last_viewed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CounterDelta is the per-event adjustment applied to product counters.
type CounterDelta struct {
	Views           int64
	CartAdds        int64
	CartRemoves     int64
	WishlistAdds    int64
	WishlistRemoves int64
	Purchases       int64
}

// IsZero reports whether the delta adjusts nothing.
func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}

// DeltaFor maps an action to its counter adjustment. Actions outside the
// mapping (including shop_visit) yield a zero delta.
func DeltaFor(action ActionKind) CounterDelta {
	switch action {
	case ActionProductView:
		return CounterDelta{Views: 1}
	case ActionAddToCart:
		return CounterDelta{CartAdds: 1}
	case ActionRemoveFromCart:
		return CounterDelta{CartAdds: -1}
	case ActionAddToWishlist:
		return CounterDelta{WishlistAdds: 1}
	case ActionRemoveFromWishlist:
		return CounterDelta{WishlistAdds: -1}
	case ActionPurchase:
		return CounterDelta{Purchases: 1}
	default:
		return CounterDelta{}
	}
}
