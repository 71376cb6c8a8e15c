package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/view"
)

// CartService defines the cart page operations of a session.
type CartService interface {
	// View renders the session's cart. fastCargo adds the shipping fee to the total.
	View(ctx context.Context, sessionID string, fastCargo bool) (*view.CartView, error)

	// AddItem merges a catalogue product into the cart and persists it.
	AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*view.CartView, error)

	// RemoveItem drops every entry with the given identity key and persists the cart.
	RemoveItem(ctx context.Context, sessionID, key string) (*view.CartView, error)

	// SelectItem remembers an entry for the product detail page.
	SelectItem(ctx context.Context, sessionID, key string) (*SelectResult, error)

	// OnAuthStateChanged reconciles the cart on sign-in (user != nil) and sign-out.
	OnAuthStateChanged(ctx context.Context, sessionID string, user *model.User) error
}

// CheckoutService defines the checkout page operations of a session.
type CheckoutService interface {
	// Summary renders the items and amounts that would be ordered.
	Summary(ctx context.Context, sessionID string) (*view.CheckoutView, error)

	// Submit validates the form and places the order.
	Submit(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*CheckoutResult, error)
}

// ProductService defines catalogue lookups.
type ProductService interface {
	// List returns catalogue products, filtered by category when one is given.
	List(ctx context.Context, category string) []model.Product

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Selected returns the product remembered for the session's detail page.
	Selected(ctx context.Context, sessionID string) (*model.Product, error)
}

// AuthService turns identity tokens into auth state changes.
type AuthService interface {
	// SignIn verifies token and emits a sign-in for the session.
	SignIn(ctx context.Context, sessionID, token string) (*model.User, error)

	// SignOut emits a sign-out for the session.
	SignOut(ctx context.Context, sessionID string) error
}

// SelectResult is where the client navigates after selecting a cart entry.
type SelectResult struct {
	ProductID model.ItemID `json:"productId"`
	Redirect  string       `json:"redirect"`
}

// CheckoutResult is the outcome of a successful order submission.
type CheckoutResult struct {
	Order    *model.Order `json:"order"`
	Message  string       `json:"message"`
	Redirect string       `json:"redirect"`
}
