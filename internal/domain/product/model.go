package product

import (
	"errors"
	"strings"
)

// LowStockThreshold is the stock level below which the dashboard flags a
// product for reordering.
const LowStockThreshold = 10

// Product is an inventory item sold or lent at the front desk.
type Product struct {
	ID       string
	Name     string
	Category string
	Stock    int
	Price    float64
}

// Validate checks if the Product has valid data.
// PRE: Product struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name cannot be empty")
	}
	if p.Stock < 0 {
		return errors.New("product stock cannot be negative")
	}
	if p.Price < 0 {
		return errors.New("product price cannot be negative")
	}
	return nil
}

// IsLowStock returns true when the product should appear in the reorder
// report.
// INVARIANT: Product fields are not mutated
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}
