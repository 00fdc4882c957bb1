package projections

import (
	"context"
	"time"
)

// GetAttendanceTodayQuery carries query parameters.
type GetAttendanceTodayQuery struct {
	Date string // Optional YYYY-MM-DD, defaults to today
}

// AttendanceWithMember represents a gym visit with member details.
type AttendanceWithMember struct {
	AttendanceID string
	MemberID     string
	MemberName   string
	EntryTime    time.Time
	ExitTime     time.Time // zero while the member is still in the gym
	Duration     time.Duration
	StillInside  bool
	ClassID      string
	ClassName    string
	RecordedBy   string
}

// GetAttendanceTodayResult carries the query result.
type GetAttendanceTodayResult struct {
	Attendees     []AttendanceWithMember
	CurrentlyIn   int
	TotalVisits   int
}

// GetAttendanceTodayDeps holds dependencies for GetAttendanceToday.
type GetAttendanceTodayDeps struct {
	AttendanceStore AttendanceStore
	MemberStore     MemberStore
	ClassStore      ClassStore // optional: nil skips class name lookup
}

// QueryGetAttendanceToday retrieves a day's visits with member details.
// PRE: Valid query parameters
// POST: Returns the day's attendance ordered as stored, with open visits flagged
func QueryGetAttendanceToday(ctx context.Context, query GetAttendanceTodayQuery, deps GetAttendanceTodayDeps, now time.Time) (GetAttendanceTodayResult, error) {
	targetDate := now.Format("2006-01-02")
	if query.Date != "" {
		if _, err := time.Parse("2006-01-02", query.Date); err == nil {
			targetDate = query.Date
		}
	}

	visits, err := deps.AttendanceStore.ListByDate(ctx, targetDate)
	if err != nil {
		return GetAttendanceTodayResult{}, err
	}

	classNames := map[string]string{}
	var result GetAttendanceTodayResult
	for _, a := range visits {
		m, err := deps.MemberStore.GetByID(ctx, a.MemberID)
		if err != nil {
			continue // skip orphaned records
		}

		awm := AttendanceWithMember{
			AttendanceID: a.ID,
			MemberID:     m.ID,
			MemberName:   m.Name,
			EntryTime:    a.EntryTime,
			ExitTime:     a.ExitTime,
			ClassID:      a.ClassID,
			RecordedBy:   a.RecordedBy,
		}
		if a.IsCheckedOut() {
			awm.Duration = a.Duration()
		} else {
			awm.StillInside = true
			result.CurrentlyIn++
		}

		if a.ClassID != "" && deps.ClassStore != nil {
			name, seen := classNames[a.ClassID]
			if !seen {
				if c, err := deps.ClassStore.GetByID(ctx, a.ClassID); err == nil {
					name = c.Name
				}
				classNames[a.ClassID] = name
			}
			awm.ClassName = name
		}

		result.Attendees = append(result.Attendees, awm)
	}
	result.TotalVisits = len(result.Attendees)

	return result, nil
}
