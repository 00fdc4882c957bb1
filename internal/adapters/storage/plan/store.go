package plan

import (
	"context"

	domain "gymdesk/internal/domain/plan"
)

// Store persists Plan state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit      int
	Offset     int
	OnlyActive bool
}
