package product

import (
	"context"

	domain "gymdesk/internal/domain/product"
)

// Store persists Product state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	Save(ctx context.Context, value domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit        int
	Offset       int
	Category     string
	LowStockOnly bool
}
