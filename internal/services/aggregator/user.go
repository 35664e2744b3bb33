// Package aggregator contains the per-entity analytics aggregators fed by
// the batch dispatcher.
package aggregator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/repository"
)

// UserAggregator maintains the bounded, deduplicated action history per
// user. Events without a user id are ignored.
type UserAggregator struct {
	repo   repository.UserAnalyticsRepository
	logger *zap.Logger
}

// NewUserAggregator creates a user analytics aggregator.
func NewUserAggregator(repo repository.UserAnalyticsRepository, logger *zap.Logger) *UserAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserAggregator{
		repo:   repo,
		logger: logger,
	}
}

func (a *UserAggregator) Name() string { return "user" }

// Aggregate folds one event into the user's record and upserts it.
func (a *UserAggregator) Aggregate(ctx context.Context, ev domain.Event) *domain.AggregationError {
	if ev.UserID == "" {
		return nil
	}
	if ev.Action == domain.ActionShopVisit || !ev.Action.Known() {
		return nil
	}

	now := time.Now()

	record, err := a.repo.Get(ctx, ev.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserAnalyticsNotFound) {
			return domain.NewAggregationError(a.Name(), err)
		}
		record = &domain.UserAnalyticsRecord{UserID: ev.UserID}
	}

	record.Actions = applyAction(record.Actions, ev, now)
	if len(record.Actions) > domain.MaxUserActions {
		record.Actions = record.Actions[len(record.Actions)-domain.MaxUserActions:]
	}

	// context fields are last-known-wins; absent fields keep prior values
	if ev.Country != "" {
		record.Country = ev.Country
	}
	if ev.City != "" {
		record.City = ev.City
	}
	if ev.Device != "" {
		record.Device = ev.Device
	}
	record.LastVisited = now

	if err := a.repo.Upsert(ctx, record); err != nil {
		return domain.NewAggregationError(a.Name(), err)
	}
	return nil
}

// applyAction mutates the action list according to the per-kind rules:
// views and purchases always append, cart/wishlist adds append once per
// (product, action) pair, and removals cancel the corresponding prior add
// without recording an entry of their own.
func applyAction(actions []domain.UserAction, ev domain.Event, now time.Time) []domain.UserAction {
	switch ev.Action {
	case domain.ActionProductView, domain.ActionPurchase:
		return append(actions, newAction(ev, now))

	case domain.ActionAddToCart, domain.ActionAddToWishlist:
		if containsPair(actions, ev.ProductID, ev.Action) {
			return actions
		}
		return append(actions, newAction(ev, now))

	case domain.ActionRemoveFromCart:
		return removePair(actions, ev.ProductID, domain.ActionAddToCart)

	case domain.ActionRemoveFromWishlist:
		return removePair(actions, ev.ProductID, domain.ActionAddToWishlist)

	default:
		return actions
	}
}

func newAction(ev domain.Event, now time.Time) domain.UserAction {
	return domain.UserAction{
		ProductID: ev.ProductID,
		ShopID:    ev.ShopID,
		Action:    ev.Action,
		Timestamp: now,
	}
}

func containsPair(actions []domain.UserAction, productID string, action domain.ActionKind) bool {
	for _, a := range actions {
		if a.ProductID == productID && a.Action == action {
			return true
		}
	}
	return false
}

func removePair(actions []domain.UserAction, productID string, action domain.ActionKind) []domain.UserAction {
	kept := actions[:0]
	for _, a := range actions {
		if a.ProductID == productID && a.Action == action {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
