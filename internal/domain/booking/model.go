package booking

import (
	"errors"
	"time"
)

// Booking status constants.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusAttended  = "attended"
)

// Domain errors
var (
	ErrNoMember         = errors.New("booking must be associated with a member")
	ErrNoClass          = errors.New("booking must be associated with a class")
	ErrNoDate           = errors.New("booking date must be set")
	ErrInvalidStatus    = errors.New("status must be 'confirmed', 'cancelled' or 'attended'")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotConfirmed     = errors.New("only confirmed bookings can be marked attended")
)

// Booking reserves a spot in a scheduled class for a specific date.
type Booking struct {
	ID        string
	MemberID  string
	ClassID   string
	Date      time.Time // the calendar date of the class occurrence
	Status    string
	CreatedAt time.Time
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (b *Booking) Validate() error {
	if b.MemberID == "" {
		return ErrNoMember
	}
	if b.ClassID == "" {
		return ErrNoClass
	}
	if b.Date.IsZero() {
		return ErrNoDate
	}
	switch b.Status {
	case StatusConfirmed, StatusCancelled, StatusAttended:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Cancel marks the booking as cancelled.
// PRE: Booking is not already cancelled
// POST: Status is cancelled
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	return nil
}

// MarkAttended records that the member showed up for the class.
// PRE: Booking is confirmed
// POST: Status is attended
func (b *Booking) MarkAttended() error {
	if b.Status != StatusConfirmed {
		return ErrNotConfirmed
	}
	b.Status = StatusAttended
	return nil
}

// CountsTowardCapacity returns true when the booking occupies a spot.
// INVARIANT: Booking fields are not mutated
func (b *Booking) CountsTowardCapacity() bool {
	return b.Status != StatusCancelled
}
