package domain

import (
	"strings"
	"time"
)

// Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks the category fields.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(c.Name) > 255 {
		return NewValidationError("name", "must be at most 255 characters")
	}
	return nil
}

// Product is a catalog entry. Carts read its price and discount to compute subtotals.
type Product struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discount_percentage"`
	Rating             float64   `json:"rating"`
	Stock              int       `json:"stock"`
	Brand              string    `json:"brand"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images"`
	IsPublished        bool      `json:"is_published"`
	CategoryID         int64     `json:"category_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// Validate checks the product fields that pricing and listing rely on.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if p.Price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	if err := ValidateDiscount(p.DiscountPercentage); err != nil {
		return err
	}
	if p.Rating < 0 || p.Rating > 5 {
		return NewValidationError("rating", "must be between 0 and 5")
	}
	if p.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	if p.CategoryID <= 0 {
		return NewValidationError("category_id", "is required")
	}
	return nil
}

// ValidateDiscount checks that a discount percentage is within [0, 100].
func ValidateDiscount(d float64) error {
	if d < 0 || d > 100 {
		return NewValidationError("discount_percentage", "must be between 0 and 100")
	}
	return nil
}

// Summary returns the subset of product fields embedded in cart items.
func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:                 p.ID,
		Title:              p.Title,
		Brand:              p.Brand,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Thumbnail:          p.Thumbnail,
	}
}

// ProductSummary is the read-only product view attached to a cart item.
type ProductSummary struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	Brand              string  `json:"brand"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Thumbnail          string  `json:"thumbnail"`
}
