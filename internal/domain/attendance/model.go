package attendance

import (
	"errors"
	"time"
)

// Attendance records a gym visit: the front-desk check-in and, optionally,
// the check-out and the class attended.
type Attendance struct {
	ID         string
	MemberID   string
	EntryTime  time.Time
	ExitTime   time.Time // zero while the member is still inside
	ClassID    string    // optional: class the member checked in for
	RecordedBy string    // account id of the operator at the desk
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID must not be empty, EntryTime must be set
func (a *Attendance) Validate() error {
	if a.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if a.EntryTime.IsZero() {
		return errors.New("entry time must be set")
	}
	if !a.ExitTime.IsZero() && a.ExitTime.Before(a.EntryTime) {
		return errors.New("exit time cannot be before entry time")
	}
	return nil
}

// IsCheckedOut returns true if the member has left.
// PRE: Attendance is initialized
// POST: Returns boolean indicating check-out status
func (a *Attendance) IsCheckedOut() bool {
	return !a.ExitTime.IsZero()
}

// Duration returns how long the visit lasted, or the time since entry for a
// member still inside.
func (a *Attendance) Duration() time.Duration {
	if a.IsCheckedOut() {
		return a.ExitTime.Sub(a.EntryTime)
	}
	return time.Since(a.EntryTime)
}
