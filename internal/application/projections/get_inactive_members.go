package projections

import (
	"context"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
)

// GetInactiveMembersQuery carries input for the inactive radar projection.
type GetInactiveMembersQuery struct {
	DaysSinceLastVisit int // members inactive for at least this many days
}

// GetInactiveMembersDeps holds dependencies for the inactive radar.
type GetInactiveMembersDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
}

// InactiveMemberResult represents a single inactive member.
type InactiveMemberResult struct {
	MemberID     string
	Name         string
	Email        string
	Phone        string
	PlanName     string
	LastVisit    string // YYYY-MM-DD or "never"
	DaysInactive int    // -1 for members who never visited
}

// QueryGetInactiveMembers returns members who haven't visited for the
// specified number of days. This backs the retention follow-up list.
func QueryGetInactiveMembers(ctx context.Context, query GetInactiveMembersQuery, deps GetInactiveMembersDeps, now time.Time) ([]InactiveMemberResult, error) {
	if query.DaysSinceLastVisit <= 0 {
		query.DaysSinceLastVisit = 30
	}

	cutoff := now.AddDate(0, 0, -query.DaysSinceLastVisit)

	members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: 10000})
	if err != nil {
		return nil, err
	}

	var results []InactiveMemberResult

	for _, m := range members {
		if m.Archived {
			continue
		}

		records, err := deps.AttendanceStore.ListByMemberID(ctx, m.ID)
		if err != nil {
			return nil, err
		}

		if len(records) == 0 {
			results = append(results, InactiveMemberResult{
				MemberID:     m.ID,
				Name:         m.Name,
				Email:        m.Email,
				Phone:        m.Phone,
				PlanName:     m.PlanNameHint,
				LastVisit:    "never",
				DaysInactive: -1,
			})
			continue
		}

		// Records are ordered DESC by entry time from ListByMemberID
		lastVisit := records[0].EntryTime
		if lastVisit.Before(cutoff) {
			days := int(now.Sub(lastVisit).Hours() / 24)
			results = append(results, InactiveMemberResult{
				MemberID:     m.ID,
				Name:         m.Name,
				Email:        m.Email,
				Phone:        m.Phone,
				PlanName:     m.PlanNameHint,
				LastVisit:    lastVisit.Format("2006-01-02"),
				DaysInactive: days,
			})
		}
	}

	return results, nil
}
