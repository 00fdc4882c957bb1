package payment

import (
	"context"

	domain "gymdesk/internal/domain/payment"
)

// Store persists Payment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domain.Payment, error)
	SumCompletedByDateRange(ctx context.Context, startDate, endDate string) (float64, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit     int
	Offset    int
	MemberID  string
	Status    string
	Method    string
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
}
