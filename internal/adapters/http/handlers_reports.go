package web

import (
	"net/http"
	"time"

	"gymdesk/internal/application/projections"
)

// handleDashboard handles GET /api/reports/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	deps := projections.GetDashboardDeps{
		MemberStore:     stores.MemberStore,
		PlanStore:       stores.PlanStore,
		AttendanceStore: stores.AttendanceStore,
		PaymentStore:    stores.PaymentStore,
		ProductStore:    stores.ProductStore,
		TodaysClassesDeps: projections.GetTodaysClassesDeps{
			ClassStore:   stores.ClassStore,
			BookingStore: stores.BookingStore,
		},
		ExpiringDeps: projections.GetExpiringMembersDeps{
			MemberStore: stores.MemberStore,
			PlanStore:   stores.PlanStore,
		},
	}
	result, err := projections.QueryGetDashboard(r.Context(), deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExpiringMembers handles GET /api/reports/expiring
// Query params: within_days (default 7), include_expired=true.
func handleExpiringMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	query := projections.GetExpiringMembersQuery{
		WithinDays:     parseIntParam(r, "within_days", 0),
		IncludeExpired: r.URL.Query().Get("include_expired") == "true",
	}
	deps := projections.GetExpiringMembersDeps{
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
	}
	result, err := projections.QueryGetExpiringMembers(r.Context(), query, deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRevenue handles GET /api/reports/revenue?start=&end=
// Dates default to the current month.
func handleRevenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	now := timeNow()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" {
		start = monthStart.Format("2006-01-02")
	}
	if end == "" {
		end = monthEnd.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	total, err := stores.PaymentStore.SumCompletedByDateRange(r.Context(), start, end)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Start": start,
		"End":   end,
		"Total": total,
	})
}

// handleTodaysClasses handles GET /api/reports/todays-classes
func handleTodaysClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	deps := projections.GetTodaysClassesDeps{
		ClassStore:   stores.ClassStore,
		BookingStore: stores.BookingStore,
	}
	result, err := projections.QueryGetTodaysClasses(r.Context(), timeNow(), deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleInactiveMembers handles GET /api/reports/inactive?days=
func handleInactiveMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	query := projections.GetInactiveMembersQuery{
		DaysSinceLastVisit: parseIntParam(r, "days", 0),
	}
	deps := projections.GetInactiveMembersDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
	}
	result, err := projections.QueryGetInactiveMembers(r.Context(), query, deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
