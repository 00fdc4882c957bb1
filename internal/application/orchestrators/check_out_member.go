package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/attendance"
)

// CheckOutAttendanceStore defines the attendance store interface for check-out.
type CheckOutAttendanceStore interface {
	GetOpenByMemberID(ctx context.Context, memberID string) (attendance.Attendance, error)
	Save(ctx context.Context, a attendance.Attendance) error
}

var ErrNotCheckedIn = errors.New("member has no open check-in")

// CheckOutMemberInput carries input for the check-out orchestrator.
type CheckOutMemberInput struct {
	MemberID string
}

// CheckOutMemberResult carries the closed attendance record.
type CheckOutMemberResult struct {
	AttendanceID string
	Duration     time.Duration
}

// CheckOutMemberDeps holds dependencies for CheckOutMember.
type CheckOutMemberDeps struct {
	AttendanceStore CheckOutAttendanceStore
	Now             func() time.Time
}

// ExecuteCheckOutMember closes the member's most recent open attendance record.
// PRE: MemberID is non-empty and has an open check-in
// POST: ExitTime set to now on the open record
func ExecuteCheckOutMember(ctx context.Context, input CheckOutMemberInput, deps CheckOutMemberDeps) (CheckOutMemberResult, error) {
	if input.MemberID == "" {
		return CheckOutMemberResult{}, errors.New("member ID is required")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	a, err := deps.AttendanceStore.GetOpenByMemberID(ctx, input.MemberID)
	if err != nil {
		return CheckOutMemberResult{}, ErrNotCheckedIn
	}

	a.ExitTime = now()
	if a.ExitTime.Before(a.EntryTime) {
		return CheckOutMemberResult{}, errors.New("exit time before entry time")
	}
	if err := deps.AttendanceStore.Save(ctx, a); err != nil {
		return CheckOutMemberResult{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_out", "member_id", input.MemberID, "attendance_id", a.ID, "duration", a.Duration().String())
	return CheckOutMemberResult{AttendanceID: a.ID, Duration: a.Duration()}, nil
}
