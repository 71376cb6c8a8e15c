// Package pricing converts stored prices into whole-unit amounts and display strings.
package pricing

import (
	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Defaults for the storefront currency. The currency has no fractional sub-units.
const (
	DefaultCurrency    = "BDT"
	DefaultGlyph       = "৳"
	DefaultLocale      = "en-BD"
	DefaultShippingFee = 150
)

// UnitPrice rounds the stored price of item to the nearest whole currency unit.
func UnitPrice(item model.CartItem) int64 {
	p := item.Price.NewPrice
	if p.IsNegative() {
		return 0
	}
	return p.Round(0).IntPart()
}

// LineTotal is the unit price multiplied by the item quantity.
func LineTotal(item model.CartItem) int64 {
	return UnitPrice(item) * int64(cart.NormalizeQuantity(item.Quantity))
}

// CartTotal sums the line totals of c.
func CartTotal(c model.Cart) int64 {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(decimal.NewFromInt(LineTotal(item)))
	}
	return total.Round(0).IntPart()
}

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal int64
	Shipping int64
	Total    int64
}

// ComputeTotals adds the shipping fee to subtotal when withShipping is set.
func ComputeTotals(subtotal int64, withShipping bool, fee int64) Totals {
	t := Totals{Subtotal: subtotal, Total: subtotal}
	if withShipping {
		t.Shipping = fee
		t.Total += fee
	}
	return t
}

// Formatter renders whole-unit amounts with locale grouping and a currency glyph.
type Formatter struct {
	glyph   string
	printer *message.Printer
}

// NewFormatter creates a formatter for the given glyph and BCP 47 locale.
// An unparsable locale falls back to English grouping.
func NewFormatter(glyph, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		glyph:   glyph,
		printer: message.NewPrinter(tag),
	}
}

// DefaultFormatter returns the storefront's BDT formatter.
func DefaultFormatter() *Formatter {
	return NewFormatter(DefaultGlyph, DefaultLocale)
}

// Format renders amount, e.g. ৳10,500.
func (f *Formatter) Format(amount int64) string {
	return f.glyph + f.printer.Sprintf("%d", amount)
}
