package booking

import (
	"context"

	domain "gymdesk/internal/domain/booking"
)

// Store persists Booking state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Save(ctx context.Context, value domain.Booking) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)
	CountActiveByClassAndDate(ctx context.Context, classID, date string) (int, error)
	GetActiveByMemberClassAndDate(ctx context.Context, memberID, classID, date string) (domain.Booking, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit    int
	Offset   int
	MemberID string
	ClassID  string
	Date     string // YYYY-MM-DD
	Status   string
}
