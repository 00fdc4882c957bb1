package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/gymclass"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/plan"

	"github.com/google/uuid"
)

// BookingStore defines the interface for booking persistence.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Save(ctx context.Context, b booking.Booking) error
	CountActiveByClassAndDate(ctx context.Context, classID, date string) (int, error)
	GetActiveByMemberClassAndDate(ctx context.Context, memberID, classID, date string) (booking.Booking, error)
}

// ClassLookupStore defines the class store interface needed by bookings.
type ClassLookupStore interface {
	GetByID(ctx context.Context, id string) (gymclass.Class, error)
}

var (
	ErrClassNotFound  = errors.New("class not found")
	ErrClassInactive  = errors.New("class is not active")
	ErrAlreadyBooked  = errors.New("member already has a booking for this session")
	ErrWeekdayMismatch = errors.New("date does not fall on the class weekday")
)

// ClassFullError is returned when a class session has no free seats.
type ClassFullError struct {
	Capacity int
}

func (e *ClassFullError) Error() string {
	return fmt.Sprintf("class is full (capacity %d)", e.Capacity)
}

// BookClassInput carries input for the booking orchestrator.
type BookClassInput struct {
	MemberID string
	ClassID  string
	Date     time.Time
}

// BookClassDeps holds dependencies for BookClass.
type BookClassDeps struct {
	MemberStore  CheckInMemberStore
	PlanStore    CheckInPlanStore
	ClassStore   ClassLookupStore
	BookingStore BookingStore
	Now          func() time.Time
}

// ExecuteBookClass reserves a seat in a class session.
//
// Booking is gated on the same derived membership status as check-in:
// expired memberships and members with no membership window cannot book.
// Capacity counts confirmed and attended bookings; cancelled seats are
// free to rebook.
//
// PRE: Member and class exist; date falls on the class weekday
// POST: Booking created with StatusConfirmed
// INVARIANT: Active bookings per session never exceed a positive capacity
func ExecuteBookClass(ctx context.Context, input BookClassInput, deps BookClassDeps) (string, error) {
	if input.MemberID == "" || input.ClassID == "" {
		return "", errors.New("member ID and class ID are required")
	}
	if input.Date.IsZero() {
		return "", errors.New("date is required")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return "", ErrMemberNotFound
	}
	if m.Archived {
		return "", ErrMemberArchived
	}

	c, err := deps.ClassStore.GetByID(ctx, input.ClassID)
	if err != nil {
		return "", ErrClassNotFound
	}
	if !c.Active {
		return "", ErrClassInactive
	}
	if weekdayName(input.Date) != c.Weekday {
		return "", ErrWeekdayMismatch
	}

	// Membership gate: same derivation as check-in.
	var memberPlan *plan.Plan
	if m.PlanID != "" && deps.PlanStore != nil {
		if p, err := deps.PlanStore.GetByID(ctx, m.PlanID); err == nil {
			memberPlan = &p
		}
	}
	status, ok := membership.StatusOf(m, memberPlan, now())
	if !ok {
		return "", ErrNoMembership
	}
	if status == membership.StatusExpired {
		return "", ErrMembershipExpired
	}

	date := membership.Midnight(input.Date)
	dateStr := date.Format("2006-01-02")

	if _, err := deps.BookingStore.GetActiveByMemberClassAndDate(ctx, input.MemberID, input.ClassID, dateStr); err == nil {
		return "", ErrAlreadyBooked
	}

	if c.HasCapacityLimit() {
		count, err := deps.BookingStore.CountActiveByClassAndDate(ctx, input.ClassID, dateStr)
		if err != nil {
			return "", err
		}
		if count >= c.Capacity {
			return "", &ClassFullError{Capacity: c.Capacity}
		}
	}

	b := booking.Booking{
		ID:        uuid.New().String(),
		MemberID:  input.MemberID,
		ClassID:   input.ClassID,
		Date:      date,
		Status:    booking.StatusConfirmed,
		CreatedAt: now(),
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return "", err
	}

	slog.Info("booking_event", "event", "class_booked", "booking_id", b.ID, "member_id", input.MemberID, "class_id", input.ClassID, "date", dateStr)
	return b.ID, nil
}

// CancelBookingInput carries input for cancelling a booking.
type CancelBookingInput struct {
	BookingID string
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	BookingStore BookingStore
}

// ExecuteCancelBooking cancels a confirmed booking, freeing its seat.
// PRE: BookingID exists and is confirmed
// POST: Booking status set to cancelled
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) error {
	if input.BookingID == "" {
		return errors.New("booking ID is required")
	}

	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return err
	}
	if err := b.Cancel(); err != nil {
		return err
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return err
	}

	slog.Info("booking_event", "event", "booking_cancelled", "booking_id", b.ID)
	return nil
}

// MarkBookingAttendedInput carries input for marking a booking attended.
type MarkBookingAttendedInput struct {
	BookingID string
}

// ExecuteMarkBookingAttended records that a booked member actually attended.
// PRE: BookingID exists and is confirmed
// POST: Booking status set to attended
func ExecuteMarkBookingAttended(ctx context.Context, input MarkBookingAttendedInput, deps CancelBookingDeps) error {
	if input.BookingID == "" {
		return errors.New("booking ID is required")
	}

	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return err
	}
	if err := b.MarkAttended(); err != nil {
		return err
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return err
	}

	slog.Info("booking_event", "event", "booking_attended", "booking_id", b.ID)
	return nil
}

// weekdayName maps a time to the lowercase weekday names used by classes.
func weekdayName(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
