package web

import "net/http"

// registerRoutes wires every API endpoint onto the mux. Authentication and
// role checks happen inside the handlers; the session middleware only
// attaches the session to the request context.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/change-password", handleChangePassword)

	// Members
	mux.HandleFunc("/api/members", handleMembers)
	mux.HandleFunc("/api/members/", handleMemberDetail)
	mux.HandleFunc("/api/members/search", handleMemberSearch)
	mux.HandleFunc("/api/members/archive", handleArchiveMember)
	mux.HandleFunc("/api/members/restore", handleRestoreMember)

	// Attendance
	mux.HandleFunc("/api/attendance", handleAttendance)
	mux.HandleFunc("/api/attendance/checkin", handleCheckIn)
	mux.HandleFunc("/api/attendance/checkout", handleCheckOut)
	mux.HandleFunc("/api/attendance/undo", handleUndoCheckIn)

	// Payments
	mux.HandleFunc("/api/payments", handlePayments)

	// Catalog
	mux.HandleFunc("/api/plans", handlePlans)
	mux.HandleFunc("/api/classes", handleClasses)
	mux.HandleFunc("/api/products", handleProducts)
	mux.HandleFunc("/api/products/stock", handleProductStock)
	mux.HandleFunc("/api/staff", handleStaff)

	// Bookings
	mux.HandleFunc("/api/bookings", handleBookings)
	mux.HandleFunc("/api/bookings/cancel", handleBookingCancel)
	mux.HandleFunc("/api/bookings/attended", handleBookingAttended)

	// Reports
	mux.HandleFunc("/api/reports/dashboard", handleDashboard)
	mux.HandleFunc("/api/reports/expiring", handleExpiringMembers)
	mux.HandleFunc("/api/reports/revenue", handleRevenue)
	mux.HandleFunc("/api/reports/todays-classes", handleTodaysClasses)
	mux.HandleFunc("/api/reports/inactive", handleInactiveMembers)

	// Admin
	mux.HandleFunc("/api/admin/accounts", handleAccounts)
	mux.HandleFunc("/api/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/", handleAdminOutbox)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
	mux.HandleFunc("/api/admin/import/members", handleImportMembers)
	mux.HandleFunc("/api/admin/reminders", handleSendReminders)
}
