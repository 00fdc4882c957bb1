package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	attendanceDomain "gymdesk/internal/domain/attendance"
	memberDomain "gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	paymentDomain "gymdesk/internal/domain/payment"
	planDomain "gymdesk/internal/domain/plan"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// isNotFound reports whether err is a row-missing store error.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// requireSession ensures the caller is authenticated.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin ensures the caller is an authenticated admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != "admin" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireDesk ensures the caller may run front-desk operations
// (check-ins, payments, bookings).
func requireDesk(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != "admin" && sess.Role != "frontdesk" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "desk")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// --- Auth ---

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.LoginDeps{AccountStore: stores.AccountStore}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		// Invalid credentials and unknown accounts get the same answer.
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role, result.PasswordChangeRequired)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{
		"AccountID":              result.AccountID,
		"Email":                  result.Email,
		"Role":                   result.Role,
		"PasswordChangeRequired": result.PasswordChangeRequired,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie("gymdesk_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleChangePassword handles POST /api/change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input struct {
		CurrentPassword string
		NewPassword     string
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       session.AccountID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrCurrentPasswordWrong) || errors.Is(err, orchestrators.ErrNewPasswordSame) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Clear the forced-change flag on the live session.
	if cookie, cerr := r.Cookie("gymdesk_session"); cerr == nil {
		session.PasswordChangeRequired = false
		sessions.Update(cookie.Value, session)
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Members ---

// handleMembers handles GET (list), POST (register), PUT (update) and
// DELETE (archive) for /api/members.
func handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"name", "document", "enrollment", "expiration"},
			[]string{"plan_id", "status"},
		)
		query := projections.GetMemberListQuery{
			Search:          lp.Search,
			PlanID:          lp.Filters["plan_id"],
			Status:          lp.Filters["status"],
			Sort:            lp.Sort,
			Dir:             lp.Dir,
			Limit:           lp.PerPage,
			Offset:          (lp.Page - 1) * lp.PerPage,
			IncludeArchived: r.URL.Query().Get("include_archived") == "true",
		}
		deps := projections.GetMemberListDeps{
			MemberStore: stores.MemberStore,
			PlanStore:   stores.PlanStore,
		}
		result, err := projections.QueryGetMemberList(ctx, query, deps, timeNow())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"Members":  result.Members,
			"PageInfo": listutil.NewPageInfo(lp.Page, lp.PerPage, result.Total),
		})

	case "POST":
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		var body struct {
			Name           string
			Document       string
			Email          string
			Phone          string
			PlanID         string
			EnrollmentDate string // YYYY-MM-DD, optional
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		input := orchestrators.RegisterMemberInput{
			Name:     body.Name,
			Document: body.Document,
			Email:    body.Email,
			Phone:    body.Phone,
			PlanID:   body.PlanID,
		}
		if body.EnrollmentDate != "" {
			d, err := time.Parse("2006-01-02", body.EnrollmentDate)
			if err != nil {
				http.Error(w, "EnrollmentDate must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			input.EnrollmentDate = d
		} else {
			// Legacy payloads spell the enrollment date differently.
			var doc map[string]any
			if json.Unmarshal(raw, &doc) == nil {
				if d, ok := memberDomain.ResolveEnrollmentDate(doc); ok {
					input.EnrollmentDate = d
				}
			}
		}
		deps := orchestrators.RegisterMemberDeps{
			MemberStore: stores.MemberStore,
			PlanStore:   stores.PlanStore,
			Now:         timeNow,
		}
		id, err := orchestrators.ExecuteRegisterMember(ctx, input, deps)
		if err != nil {
			switch {
			case errors.Is(err, orchestrators.ErrDuplicateDocument):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, orchestrators.ErrPlanNotFound):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"ID": id})

	case "PUT":
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		handleUpdateMember(w, r)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		deps := orchestrators.ArchiveMemberDeps{MemberStore: stores.MemberStore}
		if err := orchestrators.ExecuteArchiveMember(ctx, orchestrators.ArchiveMemberInput{MemberID: id}, deps); err != nil {
			if isNotFound(err) {
				http.Error(w, "member not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleUpdateMember applies a partial update to a member row.
// Empty fields are left untouched; dates clear when sent as "-".
func handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	var body struct {
		ID             string
		Name           string
		Document       string
		Email          string
		Phone          string
		PlanID         string
		EnrollmentDate string
		ExpirationDate string
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.ID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	m, err := stores.MemberStore.GetByID(ctx, body.ID)
	if err != nil {
		if isNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}

	if body.Name != "" {
		m.Name = body.Name
	}
	if body.Document != "" {
		m.Document = body.Document
	}
	if body.Email != "" {
		m.Email = body.Email
	}
	if body.Phone != "" {
		m.Phone = body.Phone
	}
	if body.PlanID != "" {
		if body.PlanID == "-" {
			m.PlanID = ""
			m.PlanNameHint = ""
		} else {
			p, perr := stores.PlanStore.GetByID(ctx, body.PlanID)
			if perr != nil {
				http.Error(w, "plan not found", http.StatusBadRequest)
				return
			}
			m.PlanID = p.ID
			m.PlanNameHint = p.Name
		}
	}
	if body.EnrollmentDate != "" {
		d, derr := time.Parse("2006-01-02", body.EnrollmentDate)
		if derr != nil {
			http.Error(w, "EnrollmentDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		m.EnrollmentDate = membership.Midnight(d)
	} else {
		// Legacy payloads spell the enrollment date differently.
		var doc map[string]any
		if json.Unmarshal(raw, &doc) == nil {
			if d, ok := memberDomain.ResolveEnrollmentDate(doc); ok {
				m.EnrollmentDate = d
			}
		}
	}
	if body.ExpirationDate != "" {
		if body.ExpirationDate == "-" {
			m.ExpirationDate = time.Time{}
		} else {
			d, derr := time.Parse("2006-01-02", body.ExpirationDate)
			if derr != nil {
				http.Error(w, "ExpirationDate must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			m.ExpirationDate = membership.Midnight(d)
		}
	}

	if err := m.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := stores.MemberStore.Save(ctx, m); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// memberDetail is the response shape for GET /api/members/{id}.
type memberDetail struct {
	Member        memberDomain.Member
	HasMembership bool
	Status        membership.Status // empty when HasMembership is false
	Expiration    *time.Time
	DaysLeft      int
	Payments      []paymentDomain.Payment
	LastVisits    []attendanceDomain.Attendance
}

// handleMemberDetail handles GET /api/members/{id}.
func handleMemberDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/members/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid member id", http.StatusBadRequest)
		return
	}

	m, err := stores.MemberStore.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}

	detail := memberDetail{Member: m}

	p, perr := lookupPlanForMember(ctx, m)
	if perr != nil {
		internalError(w, perr)
		return
	}
	if status, ok := membership.StatusOf(m, p, timeNow()); ok {
		detail.HasMembership = true
		detail.Status = status
		if exp, expOK := membership.ResolveExpiration(m, p); expOK {
			detail.Expiration = &exp
			detail.DaysLeft = membership.DaysBetween(membership.Midnight(timeNow()), exp)
		}
	}

	payments, err := stores.PaymentStore.ListByMemberID(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	if len(payments) > 10 {
		payments = payments[:10]
	}
	detail.Payments = payments

	visits, err := stores.AttendanceStore.ListByMemberID(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	if len(visits) > 10 {
		visits = visits[:10]
	}
	detail.LastVisits = visits

	writeJSON(w, http.StatusOK, detail)
}

// lookupPlanForMember resolves the member's plan reference, tolerating a
// dangling PlanID (returns nil plan, no error).
func lookupPlanForMember(ctx context.Context, m memberDomain.Member) (*planDomain.Plan, error) {
	if m.PlanID == "" {
		return nil, nil
	}
	p, err := stores.PlanStore.GetByID(ctx, m.PlanID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// handleMemberSearch handles GET /api/members/search?q=<text>
func handleMemberSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	input := orchestrators.SearchMembersInput{Query: r.URL.Query().Get("q")}
	deps := orchestrators.SearchMembersDeps{MemberStore: stores.MemberStore}
	result, err := orchestrators.ExecuteSearchMembers(r.Context(), input, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Members)
}

// handleArchiveMember handles POST /api/members/archive
func handleArchiveMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input orchestrators.ArchiveMemberInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	deps := orchestrators.ArchiveMemberDeps{MemberStore: stores.MemberStore}
	if err := orchestrators.ExecuteArchiveMember(r.Context(), input, deps); err != nil {
		if isNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreMember handles POST /api/members/restore
func handleRestoreMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input orchestrators.RestoreMemberInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	deps := orchestrators.RestoreMemberDeps{MemberStore: stores.MemberStore}
	if err := orchestrators.ExecuteRestoreMember(r.Context(), input, deps); err != nil {
		if isNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Attendance ---

// handleCheckIn handles POST /api/attendance/checkin
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireDesk(w, r)
	if !ok {
		return
	}

	var body struct {
		MemberID            string
		ClassID             string
		AcknowledgeExpiring bool
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CheckInMemberDeps{
		MemberStore:     stores.MemberStore,
		PlanStore:       stores.PlanStore,
		AttendanceStore: stores.AttendanceStore,
		Now:             timeNow,
	}
	result, err := orchestrators.ExecuteCheckInMember(r.Context(), orchestrators.CheckInMemberInput{
		MemberID:            body.MemberID,
		ClassID:             body.ClassID,
		AcknowledgeExpiring: body.AcknowledgeExpiring,
		RecordedBy:          sess.AccountID,
	}, deps)
	if err != nil {
		var expiring *orchestrators.ExpiringSoonError
		switch {
		case errors.Is(err, orchestrators.ErrMemberNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &expiring):
			writeJSON(w, http.StatusConflict, map[string]any{
				"Error":                "membership expiring soon; acknowledgement required",
				"Expiration":           expiring.Until.Format("2006-01-02"),
				"ConfirmationRequired": true,
			})
		case errors.Is(err, orchestrators.ErrMembershipExpired),
			errors.Is(err, orchestrators.ErrNoMembership),
			errors.Is(err, orchestrators.ErrMemberArchived):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleCheckOut handles POST /api/attendance/checkout
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var input orchestrators.CheckOutMemberInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CheckOutMemberDeps{
		AttendanceStore: stores.AttendanceStore,
		Now:             timeNow,
	}
	result, err := orchestrators.ExecuteCheckOutMember(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrNotCheckedIn) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"AttendanceID":    result.AttendanceID,
		"DurationMinutes": int(result.Duration.Minutes()),
	})
}

// handleUndoCheckIn handles POST /api/attendance/undo — removes a check-in
// recorded by mistake. Only today's visits can be undone.
func handleUndoCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var input orchestrators.UndoCheckInInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.UndoCheckInDeps{
		AttendanceStore: stores.AttendanceStore,
		Now:             timeNow,
	}
	if err := orchestrators.ExecuteUndoCheckIn(r.Context(), input, deps); err != nil {
		if errors.Is(err, orchestrators.ErrUndoNotToday) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAttendance handles GET /api/attendance?member_id= / ?date=
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		visits, err := stores.AttendanceStore.ListByMemberID(ctx, memberID)
		if err != nil {
			internalError(w, err)
			return
		}
		if visits == nil {
			visits = []attendanceDomain.Attendance{}
		}
		writeJSON(w, http.StatusOK, visits)
		return
	}

	query := projections.GetAttendanceTodayQuery{Date: r.URL.Query().Get("date")}
	deps := projections.GetAttendanceTodayDeps{
		AttendanceStore: stores.AttendanceStore,
		MemberStore:     stores.MemberStore,
		ClassStore:      stores.ClassStore,
	}
	result, err := projections.QueryGetAttendanceToday(ctx, query, deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
