package repository

import (
	"context"

	"storefront/internal/model"
)

// CartRepository defines the per-user cloud cart document operations.
type CartRepository interface {
	// ReadCart returns the user's cart items. A missing document is an empty cart.
	ReadCart(ctx context.Context, userID string) (model.Cart, error)

	// WriteCart replaces the items of the user's cart document and stamps its update time.
	// Other fields of the document are left untouched.
	WriteCart(ctx context.Context, userID string, cart model.Cart) error
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// CreateOrder stores a new order under its user. The store assigns CreatedAt.
	CreateOrder(ctx context.Context, order *model.Order) error
}

// Store bundles the cart and order repositories of one backend.
type Store interface {
	CartRepository
	OrderRepository
}
