package projections

import (
	"context"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/membership"
	domainPlan "gymdesk/internal/domain/plan"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Search          string
	PlanID          string
	Status          string // optional: active, expiring_soon, expired; empty returns all
	Sort            string
	Dir             string
	Limit           int
	Offset          int
	IncludeArchived bool
}

// MemberWithStatus represents a member row with its derived membership status.
type MemberWithStatus struct {
	ID             string
	Name           string
	Document       string
	Email          string
	Phone          string
	PlanID         string
	PlanName       string
	EnrollmentDate time.Time
	Expiration     time.Time // zero when no window is determinable
	DaysLeft       int       // meaningless when Status is empty
	Status         membership.Status
	HasMembership  bool
	Archived       bool
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberWithStatus
	Total   int
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	PlanStore   PlanStore
}

// QueryGetMemberList retrieves a page of members with derived statuses.
// PRE: Valid query parameters
// POST: Returns members with status recomputed from expiration data
// INVARIANT: The stored status hint is never surfaced; status always derives
// from the expiration window as of now
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps, now time.Time) (GetMemberListResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := memberStore.ListFilter{
		Limit:           limit,
		Offset:          query.Offset,
		PlanID:          query.PlanID,
		Search:          query.Search,
		Sort:            query.Sort,
		Dir:             query.Dir,
		IncludeArchived: query.IncludeArchived,
	}

	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	planCache := map[string]*domainPlan.Plan{}
	var rows []MemberWithStatus
	for _, m := range members {
		p := lookupPlan(ctx, deps.PlanStore, planCache, m.PlanID)

		row := MemberWithStatus{
			ID:             m.ID,
			Name:           m.Name,
			Document:       m.Document,
			Email:          m.Email,
			Phone:          m.Phone,
			PlanID:         m.PlanID,
			PlanName:       m.PlanNameHint,
			EnrollmentDate: m.EnrollmentDate,
			Archived:       m.Archived,
		}
		if p != nil && row.PlanName == "" {
			row.PlanName = p.Name
		}

		if status, ok := membership.StatusOf(m, p, now); ok {
			expiration, _ := membership.ResolveExpiration(m, p)
			row.Status = status
			row.HasMembership = true
			row.Expiration = expiration
			row.DaysLeft = membership.DaysBetween(membership.Midnight(now), expiration)
		}

		if query.Status != "" && string(row.Status) != query.Status {
			continue
		}
		rows = append(rows, row)
	}

	return GetMemberListResult{Members: rows, Total: total}, nil
}

// lookupPlan resolves a plan through a per-query cache. Missing plans cache
// as nil so a dangling reference costs one lookup, not one per row.
func lookupPlan(ctx context.Context, store PlanStore, cache map[string]*domainPlan.Plan, planID string) *domainPlan.Plan {
	if planID == "" || store == nil {
		return nil
	}
	if cached, seen := cache[planID]; seen {
		return cached
	}
	var result *domainPlan.Plan
	if p, err := store.GetByID(ctx, planID); err == nil {
		result = &p
	}
	cache[planID] = result
	return result
}
