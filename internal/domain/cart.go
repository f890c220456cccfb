package domain

import (
	"time"
)

// Cart is an aggregate owned by exactly one user. Its items are only ever
// written together with the cart.
type Cart struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	TotalAmount float64    `json:"total_amount"`
	Items       []CartItem `json:"cart_items"`
}

// CartItem is one line of a cart.
type CartItem struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  float64         `json:"subtotal"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// CartItemRequest is a client-supplied line: a product reference and a quantity.
type CartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate checks the quantity of a requested line.
func (r CartItemRequest) Validate() error {
	if r.Quantity < 1 {
		return NewValidationError("quantity", "must be at least 1")
	}
	return nil
}

// NewCart creates an empty cart for the given owner.
func NewCart(userID int64) *Cart {
	return &Cart{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Items:     []CartItem{},
	}
}
