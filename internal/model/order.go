package model

import "time"

// PaymentMethod names how an order is paid.
type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "COD"
	PaymentBKash PaymentMethod = "BKASH"
	PaymentNagad PaymentMethod = "NAGAD"
)

// OrderStatus is the lifecycle marker written with an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaidDummy OrderStatus = "paid(dummy)"
)

// StatusFor returns the initial status of an order paid with method.
func StatusFor(method PaymentMethod) OrderStatus {
	if method == PaymentCOD {
		return OrderStatusPending
	}
	return OrderStatusPaidDummy
}

// PaymentInfo records the payment method and, for wallet payments, the dummy reference.
type PaymentInfo struct {
	Method PaymentMethod `json:"method"`
	Number string        `json:"number,omitempty"`
	TrxID  string        `json:"trxId,omitempty"`
}

// ShippingAddress holds the delivery details collected at checkout.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Order is the immutable record written once per successful checkout.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Items       Cart            `json:"items"`
	Subtotal    int64           `json:"subtotalBDT"`
	ShippingFee int64           `json:"shippingBDT"`
	Total       int64           `json:"totalBDT"`
	Currency    string          `json:"currency"`
	Status      OrderStatus     `json:"status"`
	Payment     PaymentInfo     `json:"payment"`
	Shipping    ShippingAddress `json:"shipping"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CheckoutRequest is the form submitted from the checkout page.
type CheckoutRequest struct {
	FullName string        `json:"fullName" validate:"required"`
	Phone    string        `json:"phone" validate:"required"`
	Address  string        `json:"address" validate:"required"`
	Method   PaymentMethod `json:"method"`
	Number   string        `json:"number,omitempty"`
	TrxID    string        `json:"trxId,omitempty"`
}

// AddItemRequest is the payload for adding a catalogue product to the cart.
type AddItemRequest struct {
	ProductID ItemID `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// User is the identity reported by the identity provider.
type User struct {
	UID string `json:"uid"`
}
