package domain

import "encoding/json"

// ActionKind identifies the user interaction an analytics event carries.
type ActionKind string

const (
	ActionProductView        ActionKind = "product_view"
	ActionAddToCart          ActionKind = "add_to_cart"
	ActionRemoveFromCart     ActionKind = "remove_from_cart"
	ActionAddToWishlist      ActionKind = "add_to_wishlist"
	ActionRemoveFromWishlist ActionKind = "remove_from_wishlist"
	ActionPurchase           ActionKind = "purchase"
	// ActionShopVisit is accepted on the wire but contributes nothing to
	// either aggregate.
	ActionShopVisit ActionKind = "shop_visit"
)

var knownActions = map[ActionKind]struct{}{
	ActionProductView:        {},
	ActionAddToCart:          {},
	ActionRemoveFromCart:     {},
	ActionAddToWishlist:      {},
	ActionRemoveFromWishlist: {},
	ActionPurchase:           {},
	ActionShopVisit:          {},
}

// Known reports whether the action kind is part of the recognized set.
func (a ActionKind) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// Event is a single user-interaction signal emitted for analytics.
// Entity identifiers are optional on the wire; each aggregator no-ops
// when the identifier it keys on is absent.
type Event struct {
	Action    ActionKind `json:"action"`
	UserID    string     `json:"userId,omitempty"`
	ProductID string     `json:"productId,omitempty"`
	ShopID    string     `json:"shopId,omitempty"`
	Country   string     `json:"country,omitempty"`
	City      string     `json:"city,omitempty"`
	Device    string     `json:"device,omitempty"`
}

// Validate rejects events that must never reach the ingestion queue.
func (e *Event) Validate() error {
	if e == nil {
		return ErrInvalidEvent
	}
	if e.Action == "" {
		return ErrMissingAction
	}
	if !e.Action.Known() {
		return ErrUnknownAction
	}
	return nil
}

// ParseEvent decodes and validates a wire payload.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, WrapError(ErrCodeInvalid, "malformed event payload", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
