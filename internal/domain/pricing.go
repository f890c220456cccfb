package domain

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for subtotals and totals.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Subtotal returns price * quantity * (1 - discountPercentage/100), rounded
// half-up to MoneyPlaces.
func Subtotal(price, discountPercentage float64, quantity int) decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromFloat(discountPercentage)).Div(hundred)
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(factor).
		Round(MoneyPlaces)
}

// NewCartItem prices a line for the given product.
func NewCartItem(product *Product, quantity int) CartItem {
	return CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Subtotal:  Subtotal(product.Price, product.DiscountPercentage, quantity).InexactFloat64(),
		Product:   product.Summary(),
	}
}

// SetItems replaces the cart's item set and recomputes the total from scratch.
func (c *Cart) SetItems(items []CartItem) {
	if items == nil {
		items = []CartItem{}
	}
	c.Items = items
	c.TotalAmount = Total(items).InexactFloat64()
}

// Total sums item subtotals.
func Total(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Subtotal))
	}
	return total.Round(MoneyPlaces)
}
