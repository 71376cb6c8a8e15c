package model

// Product is a catalogue entry as published in the storefront data file.
type Product struct {
	ID       ItemID `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    Price  `json:"price"`
	Img      Image  `json:"img"`
}

// ToCartItem converts a product into a cart line of the given quantity.
func (p Product) ToCartItem(quantity int) CartItem {
	return CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Img:      p.Img,
		Quantity: quantity,
	}
}
