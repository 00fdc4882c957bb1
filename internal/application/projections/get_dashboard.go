package projections

import (
	"context"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	productStore "gymdesk/internal/adapters/storage/product"
	"gymdesk/internal/domain/membership"
	domainPlan "gymdesk/internal/domain/plan"
)

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore        MemberStore
	PlanStore          PlanStore
	AttendanceStore    AttendanceStore
	PaymentStore       PaymentStore
	ProductStore       ProductStore // optional: nil skips the low-stock panel
	TodaysClassesDeps  GetTodaysClassesDeps
	ExpiringDeps       GetExpiringMembersDeps
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	// Membership counters, derived from expiration data as of now.
	TotalMembers    int
	ActiveMembers   int
	ExpiringSoon    int
	ExpiredMembers  int
	NoMembership    int

	// Today.
	VisitsToday   int
	TodaysClasses []TodaysClassResult

	// Renewal follow-up shortlist, soonest first.
	ExpiringMembers []ExpiringMemberResult

	// Money.
	RevenueThisMonth float64
	RevenueToday     float64

	// Inventory.
	LowStockCount int
}

// QueryGetDashboard aggregates the front-desk landing page counters.
// Sub-queries degrade independently: a failing panel leaves its zero value
// rather than blanking the whole dashboard.
// PRE: Stores are connected
// POST: Counters reflect derived membership status, never stored hints
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	result := DashboardResult{}

	members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: 10000})
	if err != nil {
		return DashboardResult{}, err
	}

	planCache := map[string]*domainPlan.Plan{}
	for _, m := range members {
		if m.Archived {
			continue
		}
		result.TotalMembers++

		p := lookupPlan(ctx, deps.PlanStore, planCache, m.PlanID)
		status, ok := membership.StatusOf(m, p, now)
		if !ok {
			result.NoMembership++
			continue
		}
		switch status {
		case membership.StatusActive:
			result.ActiveMembers++
		case membership.StatusExpiringSoon:
			result.ExpiringSoon++
		case membership.StatusExpired:
			result.ExpiredMembers++
		}
	}

	today := now.Format("2006-01-02")
	if count, err := deps.AttendanceStore.CountByDate(ctx, today); err == nil {
		result.VisitsToday = count
	}

	if classes, err := QueryGetTodaysClasses(ctx, now, deps.TodaysClassesDeps); err == nil {
		result.TodaysClasses = classes
	}

	if expiring, err := QueryGetExpiringMembers(ctx, GetExpiringMembersQuery{}, deps.ExpiringDeps, now); err == nil {
		result.ExpiringMembers = expiring
	}

	if deps.PaymentStore != nil {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		monthEnd := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		if sum, err := deps.PaymentStore.SumCompletedByDateRange(ctx, monthStart, monthEnd); err == nil {
			result.RevenueThisMonth = sum
		}
		if sum, err := deps.PaymentStore.SumCompletedByDateRange(ctx, today, today); err == nil {
			result.RevenueToday = sum
		}
	}

	if deps.ProductStore != nil {
		if low, err := deps.ProductStore.List(ctx, productStore.ListFilter{LowStockOnly: true, Limit: 1000}); err == nil {
			result.LowStockCount = len(low)
		}
	}

	return result, nil
}
