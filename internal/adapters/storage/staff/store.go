package staff

import (
	"context"

	domain "gymdesk/internal/domain/staff"
)

// Store persists StaffMember state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.StaffMember, error)
	Save(ctx context.Context, value domain.StaffMember) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.StaffMember, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
