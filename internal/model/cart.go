package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ItemID is a cart or product identifier. Storefront data uses both numeric
// and string ids, so it decodes from either JSON form and keeps numeric ids numeric.
type ItemID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON writes canonical integers as JSON numbers and everything else as strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.isCanonicalInt() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ItemID) isCanonicalInt() bool {
	s := string(id)
	if s == "" {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return false
	}
	return strconv.FormatInt(n, 10) == s
}

// String returns the identifier text.
func (id ItemID) String() string {
	return string(id)
}

// Price holds the stored price of a line item.
type Price struct {
	NewPrice decimal.Decimal `json:"newPrice"`
}

// MarshalJSON writes the price as a JSON number, the way storefront data stores it.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`{"newPrice":` + p.NewPrice.String() + `}`), nil
}

// Image holds the display image of a line item.
type Image struct {
	SingleImage string `json:"singleImage,omitempty"`
}

// CartItem is a single line of a shopping cart.
type CartItem struct {
	ID        ItemID `json:"id,omitempty"`
	ProductID ItemID `json:"productId,omitempty"`
	Name      string `json:"name,omitempty"`
	Price     Price  `json:"price"`
	Img       Image  `json:"img"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered list of line items.
type Cart []CartItem
