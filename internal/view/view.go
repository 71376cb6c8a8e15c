package view

import (
	"fmt"
	"net/url"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/pricing"
)

const (
	EmptyCartMessage     = "Cart is empty"
	EmptyCheckoutMessage = "Cart is empty."
)

// CartRow is one line of the cart table.
type CartRow struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	UnitPrice    string `json:"unitPrice"`
	UnitPriceBDT int64  `json:"unitPriceBDT"`
	Quantity     int    `json:"quantity"`
	LineTotal    string `json:"lineTotal"`
	LineTotalBDT int64  `json:"lineTotalBDT"`
	DeleteURL    string `json:"deleteUrl"`
	SelectURL    string `json:"selectUrl"`
}

// Amounts is a formatted subtotal, shipping and total.
type Amounts struct {
	Subtotal    string `json:"subtotal"`
	SubtotalBDT int64  `json:"subtotalBDT"`
	Shipping    string `json:"shipping"`
	ShippingBDT int64  `json:"shippingBDT"`
	Total       string `json:"total"`
	TotalBDT    int64  `json:"totalBDT"`
	Currency    string `json:"currency"`
}

// CartView is the cart page.
type CartView struct {
	Rows      []CartRow `json:"rows"`
	Empty     bool      `json:"empty"`
	Message   string    `json:"message,omitempty"`
	Badge     int       `json:"badge"`
	FastCargo bool      `json:"fastCargo"`
	Amounts
}

// SummaryRow is one line of the checkout summary, labelled "name × qty".
type SummaryRow struct {
	Label        string `json:"label"`
	LineTotal    string `json:"lineTotal"`
	LineTotalBDT int64  `json:"lineTotalBDT"`
}

// CheckoutView is the checkout page summary.
type CheckoutView struct {
	Rows    []SummaryRow `json:"rows"`
	Empty   bool         `json:"empty"`
	Message string       `json:"message,omitempty"`
	Amounts
}

// Builder renders carts into view models.
type Builder struct {
	formatter   *pricing.Formatter
	shippingFee int64
	currency    string
}

// NewBuilder creates a builder. A nil formatter uses the default BDT formatter.
func NewBuilder(formatter *pricing.Formatter, shippingFee int64, currency string) *Builder {
	if formatter == nil {
		formatter = pricing.DefaultFormatter()
	}
	if currency == "" {
		currency = pricing.DefaultCurrency
	}
	return &Builder{
		formatter:   formatter,
		shippingFee: shippingFee,
		currency:    currency,
	}
}

// Cart builds the cart page. Shipping is added only when fastCargo is set.
func (b *Builder) Cart(c model.Cart, fastCargo bool) CartView {
	v := CartView{
		Rows:      make([]CartRow, 0, len(c)),
		Badge:     cart.Count(c),
		FastCargo: fastCargo,
	}

	for _, item := range c {
		key := cart.Key(item)
		unit := pricing.UnitPrice(item)
		line := pricing.LineTotal(item)
		escaped := url.PathEscape(key)

		v.Rows = append(v.Rows, CartRow{
			Key:          key,
			Name:         item.Name,
			Image:        item.Img.SingleImage,
			UnitPrice:    b.formatter.Format(unit),
			UnitPriceBDT: unit,
			Quantity:     cart.NormalizeQuantity(item.Quantity),
			LineTotal:    b.formatter.Format(line),
			LineTotalBDT: line,
			DeleteURL:    "/api/cart/items/" + escaped,
			SelectURL:    "/api/cart/items/" + escaped + "/select",
		})
	}

	if len(c) == 0 {
		v.Empty = true
		v.Message = EmptyCartMessage
	}

	v.Amounts = b.amounts(pricing.ComputeTotals(pricing.CartTotal(c), fastCargo, b.shippingFee))
	return v
}

// Checkout builds the checkout summary. Shipping is always charged.
func (b *Builder) Checkout(c model.Cart) CheckoutView {
	v := CheckoutView{Rows: make([]SummaryRow, 0, len(c))}

	for _, item := range c {
		line := pricing.LineTotal(item)
		v.Rows = append(v.Rows, SummaryRow{
			Label:        fmt.Sprintf("%s × %d", item.Name, cart.NormalizeQuantity(item.Quantity)),
			LineTotal:    b.formatter.Format(line),
			LineTotalBDT: line,
		})
	}

	if len(c) == 0 {
		v.Empty = true
		v.Message = EmptyCheckoutMessage
	}

	v.Amounts = b.amounts(b.CheckoutTotals(c))
	return v
}

// CheckoutTotals returns the amounts charged for an order of c.
func (b *Builder) CheckoutTotals(c model.Cart) pricing.Totals {
	return pricing.ComputeTotals(pricing.CartTotal(c), true, b.shippingFee)
}

// Currency returns the currency code written on orders.
func (b *Builder) Currency() string {
	return b.currency
}

func (b *Builder) amounts(t pricing.Totals) Amounts {
	return Amounts{
		Subtotal:    b.formatter.Format(t.Subtotal),
		SubtotalBDT: t.Subtotal,
		Shipping:    b.formatter.Format(t.Shipping),
		ShippingBDT: t.Shipping,
		Total:       b.formatter.Format(t.Total),
		TotalBDT:    t.Total,
		Currency:    b.currency,
	}
}
