package catalog

import "storefront/internal/model"

// mapCatalog implements Catalog with an id index over an ordered slice.
type mapCatalog struct {
	products []model.Product
	byID     map[model.ItemID]int
}

// NewIndex builds a catalog from products. Products without an id are
// skipped; a repeated id replaces the earlier entry in place.
func NewIndex(products []model.Product) Catalog {
	c := &mapCatalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[model.ItemID]int, len(products)),
	}
	for _, p := range products {
		c.add(p)
	}
	return c
}

func (c *mapCatalog) add(p model.Product) {
	if p.ID == "" {
		return
	}
	if i, ok := c.byID[p.ID]; ok {
		c.products[i] = p
		return
	}
	c.byID[p.ID] = len(c.products)
	c.products = append(c.products, p)
}

func (c *mapCatalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *mapCatalog) Get(id model.ItemID) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

func (c *mapCatalog) Size() int {
	return len(c.products)
}
