package payment

import (
	"errors"
	"time"
)

// Payment status constants.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// Payment method constants.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
)

// Domain errors
var (
	ErrNoMember       = errors.New("payment must be associated with a member")
	ErrNegativeAmount = errors.New("payment amount cannot be negative")
	ErrInvalidStatus  = errors.New("status must be 'completed', 'pending' or 'cancelled'")
	ErrNoDate         = errors.New("payment date must be set")
)

// Payment records a single membership transaction. Payments are written once
// by the renewal flow and never mutated by it; corrections happen through
// manual edits in the dashboard.
type Payment struct {
	ID          string
	MemberID    string
	PlanID      string // plan paid for; empty when recorded against no plan
	Amount      float64
	PaymentDate time.Time
	Method      string
	Status      string
	Note        string
	RecordedBy  string // account id of the operator who took the payment
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if p.MemberID == "" {
		return ErrNoMember
	}
	if p.Amount < 0 {
		return ErrNegativeAmount
	}
	if p.PaymentDate.IsZero() {
		return ErrNoDate
	}
	switch p.Status {
	case StatusCompleted, StatusPending, StatusCancelled:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// IsCompleted returns true if the payment went through.
// INVARIANT: Payment fields are not mutated
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}
