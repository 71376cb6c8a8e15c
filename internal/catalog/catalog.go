package catalog

import (
	"context"

	"storefront/internal/model"
)

// Catalog is a read-only product index.
type Catalog interface {
	// All returns the products in file order.
	All() []model.Product

	// Get looks up a product by id.
	Get(id model.ItemID) (model.Product, bool)

	// Size returns the number of products.
	Size() int
}

// Loader defines the interface for loading the product data file.
type Loader interface {
	// Load reads a JSON product array, optionally gzipped, and returns a Catalog.
	Load(ctx context.Context, path string) (Catalog, error)
}
