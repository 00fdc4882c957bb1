package projections

import (
	"context"

	gymclassStore "gymdesk/internal/adapters/storage/gymclass"
	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	productStore "gymdesk/internal/adapters/storage/product"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainClass "gymdesk/internal/domain/gymclass"
	domainMember "gymdesk/internal/domain/member"
	domainPayment "gymdesk/internal/domain/payment"
	domainPlan "gymdesk/internal/domain/plan"
	domainProduct "gymdesk/internal/domain/product"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter memberStore.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter memberStore.ListFilter) (int, error)
}

// PlanStore interface for plan queries.
type PlanStore interface {
	GetByID(ctx context.Context, id string) (domainPlan.Plan, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDate(ctx context.Context, date string) ([]domainAttendance.Attendance, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domainAttendance.Attendance, error)
	CountByDate(ctx context.Context, date string) (int, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	List(ctx context.Context, filter paymentStore.ListFilter) ([]domainPayment.Payment, error)
	SumCompletedByDateRange(ctx context.Context, startDate, endDate string) (float64, error)
}

// ClassStore interface for class schedule queries.
type ClassStore interface {
	GetByID(ctx context.Context, id string) (domainClass.Class, error)
	List(ctx context.Context, filter gymclassStore.ListFilter) ([]domainClass.Class, error)
}

// BookingStore interface for booking occupancy queries.
type BookingStore interface {
	CountActiveByClassAndDate(ctx context.Context, classID, date string) (int, error)
}

// ProductStore interface for inventory queries.
type ProductStore interface {
	List(ctx context.Context, filter productStore.ListFilter) ([]domainProduct.Product, error)
}
