package projections

import (
	"context"
	"sort"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/membership"
	domainPlan "gymdesk/internal/domain/plan"
)

// GetExpiringMembersQuery carries input for the expiration radar.
type GetExpiringMembersQuery struct {
	// WithinDays widens or narrows the lookahead window. Zero uses the
	// standard expiring-soon window.
	WithinDays int
	// IncludeExpired appends members whose window already lapsed.
	IncludeExpired bool
}

// ExpiringMemberResult represents one member approaching (or past) expiration.
type ExpiringMemberResult struct {
	MemberID   string
	Name       string
	Email      string
	Phone      string
	PlanName   string
	Expiration time.Time
	DaysLeft   int // negative when already expired
	Status     membership.Status
}

// GetExpiringMembersDeps holds dependencies for the expiration radar.
type GetExpiringMembersDeps struct {
	MemberStore MemberStore
	PlanStore   PlanStore
}

// QueryGetExpiringMembers returns members whose membership window ends within
// the lookahead, soonest first. This backs the renewal follow-up panel.
// PRE: Stores are connected
// POST: Results sorted by expiration ascending; archived members excluded
func QueryGetExpiringMembers(ctx context.Context, query GetExpiringMembersQuery, deps GetExpiringMembersDeps, now time.Time) ([]ExpiringMemberResult, error) {
	withinDays := query.WithinDays
	if withinDays <= 0 {
		withinDays = membership.ExpiringSoonWindowDays
	}

	members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: 10000})
	if err != nil {
		return nil, err
	}

	today := membership.Midnight(now)
	planCache := map[string]*domainPlan.Plan{}
	var results []ExpiringMemberResult

	for _, m := range members {
		if m.Archived {
			continue
		}
		p := lookupPlan(ctx, deps.PlanStore, planCache, m.PlanID)

		expiration, ok := membership.ResolveExpiration(m, p)
		if !ok {
			continue
		}
		daysLeft := membership.DaysBetween(today, expiration)
		if daysLeft > withinDays {
			continue
		}
		if daysLeft < 0 && !query.IncludeExpired {
			continue
		}

		planName := m.PlanNameHint
		if planName == "" && p != nil {
			planName = p.Name
		}
		results = append(results, ExpiringMemberResult{
			MemberID:   m.ID,
			Name:       m.Name,
			Email:      m.Email,
			Phone:      m.Phone,
			PlanName:   planName,
			Expiration: expiration,
			DaysLeft:   daysLeft,
			Status:     membership.Classify(expiration, now),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Expiration.Before(results[j].Expiration)
	})
	return results, nil
}
