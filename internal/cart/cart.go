// Package cart implements the in-memory cart operations: identity keys,
// reconciliation of a local and a remote cart, and item add/remove.
package cart

import (
	"storefront/internal/model"
)

// Key returns the identity of an item: its id, else its product id, else its name.
// An empty result means the item has no usable identity.
func Key(item model.CartItem) string {
	if item.ID != "" {
		return item.ID.String()
	}
	if item.ProductID != "" {
		return item.ProductID.String()
	}
	return item.Name
}

// NormalizeQuantity coerces a stored quantity to a positive integer, defaulting to 1.
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// MergeReport describes what a merge did with its inputs.
type MergeReport struct {
	// Dropped counts items that had no identity key and were discarded.
	Dropped int
}

// Merge reconciles a local and a remote cart into one cart.
// Remote items are applied first, then local items. A repeated key takes the
// later item's fields and the sum of both quantities.
func Merge(local, remote model.Cart) (model.Cart, MergeReport) {
	var report MergeReport

	index := make(map[string]int, len(local)+len(remote))
	merged := make(model.Cart, 0, len(local)+len(remote))

	put := func(item model.CartItem) {
		key := Key(item)
		if key == "" {
			report.Dropped++
			return
		}

		qty := NormalizeQuantity(item.Quantity)
		if i, ok := index[key]; ok {
			qty += merged[i].Quantity
			merged[i] = item
			merged[i].Quantity = qty
			return
		}

		item.Quantity = qty
		index[key] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range remote {
		put(item)
	}
	for _, item := range local {
		put(item)
	}

	return merged, report
}

// Add puts item into c, summing quantities when the identity is already present.
func Add(c model.Cart, item model.CartItem) (model.Cart, MergeReport) {
	return Merge(model.Cart{item}, c)
}

// Remove returns c without the items whose identity equals key, and whether any were removed.
func Remove(c model.Cart, key string) (model.Cart, bool) {
	out := make(model.Cart, 0, len(c))
	removed := false
	for _, item := range c {
		if Key(item) == key {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// Find returns the item whose identity equals key.
func Find(c model.Cart, key string) (model.CartItem, bool) {
	for _, item := range c {
		if Key(item) == key {
			return item, true
		}
	}
	return model.CartItem{}, false
}

// Count returns the number of distinct entries in c. It does not sum quantities.
func Count(c model.Cart) int {
	return len(c)
}
