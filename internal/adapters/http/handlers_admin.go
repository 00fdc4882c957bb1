package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	accountStore "gymdesk/internal/adapters/storage/account"
	"gymdesk/internal/application/orchestrators"
	accountDomain "gymdesk/internal/domain/account"
	"gymdesk/internal/domain/outbox"
)

// handleAdminOutbox handles admin endpoints for managing outbox entries.
// Routes: GET /api/admin/outbox (list), POST /api/admin/outbox/{id}/retry,
// POST /api/admin/outbox/{id}/abandon.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var entries []outbox.Entry
		var err error
		switch r.URL.Query().Get("status") {
		case "", outbox.StatusFailed:
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		default:
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if entries == nil {
			entries = []outbox.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)

	case "POST":
		// Path shape: /api/admin/outbox/{id}/{action}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 || parts[2] != "outbox" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		entryID, action := parts[3], parts[4]

		entry, err := stores.OutboxStore.GetByID(ctx, entryID)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "outbox entry not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}

		switch action {
		case "retry":
			if entry.Status == outbox.StatusDone {
				http.Error(w, "entry already delivered", http.StatusConflict)
				return
			}
			// Reset to pending so the next sweep picks it up regardless of
			// how many automatic attempts it already burned.
			entry.Status = outbox.StatusPending
			entry.LastAttemptedAt = time.Time{}
			if entry.Attempts >= entry.MaxAttempts {
				entry.MaxAttempts = entry.Attempts + 1
			}
			if err := stores.OutboxStore.Save(ctx, entry); err != nil {
				internalError(w, err)
				return
			}
			if err := orchestrators.ExecuteOutboxRetry(ctx, outboxRetryDeps()); err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "retry triggered"})

		case "abandon":
			entry.MarkAbandoned()
			if err := stores.OutboxStore.Save(ctx, entry); err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// outboxRetryDeps assembles delivery dependencies from the wired globals.
func outboxRetryDeps() orchestrators.OutboxRetryDeps {
	return orchestrators.OutboxRetryDeps{
		OutboxStore: stores.OutboxStore,
		MemberStore: stores.MemberStore,
		EmailSender: emailSender,
		FromAddress: emailFromAddress,
		Now:         timeNow,
	}
}

// handleAdminPerf handles GET /api/admin/perf — a snapshot of request and
// query timings from the in-memory collector.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collector not enabled", http.StatusNotFound)
		return
	}

	windowMinutes := parseIntParam(r, "window_minutes", 15)
	topN := parseIntParam(r, "top", 10)
	since := timeNow().Add(-time.Duration(windowMinutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, topN))
}

// handleImportMembers handles POST /api/admin/import/members.
// The request body is a CSV stream (legacy spreadsheet export); query
// params: dry_run=true, update=true.
func handleImportMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	input := orchestrators.ImportMembersInput{
		Reader:         r.Body,
		AdminAccountID: sess.AccountID,
		DryRun:         r.URL.Query().Get("dry_run") == "true",
		UpdateMode:     r.URL.Query().Get("update") == "true",
	}
	deps := orchestrators.ImportMembersDeps{
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
		GenerateID:  generateID,
	}
	result, err := orchestrators.ExecuteImportMembers(r.Context(), input, deps)
	if err != nil {
		var invalid *orchestrators.ImportMembersValidationError
		if errors.As(err, &invalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSendReminders handles POST /api/admin/reminders — runs the renewal
// reminder sweep and queues outbox emails for expiring members.
func handleSendReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input orchestrators.SendRenewalRemindersInput
	if r.ContentLength > 0 {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	deps := orchestrators.SendRenewalRemindersDeps{
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
		OutboxStore: stores.OutboxStore,
		Now:         timeNow,
	}
	result, err := orchestrators.ExecuteSendRenewalReminders(r.Context(), input, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAccounts handles GET (list) and POST (create) for /api/admin/accounts.
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		accounts, err := stores.AccountStore.List(ctx, accountStore.ListFilter{
			Role: r.URL.Query().Get("role"),
		})
		if err != nil {
			internalError(w, err)
			return
		}
		// Never expose password hashes, even to admins.
		type accountView struct {
			ID                     string
			Email                  string
			Role                   string
			CreatedAt              time.Time
			PasswordChangeRequired bool
			Locked                 bool
		}
		views := make([]accountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, accountView{
				ID:                     a.ID,
				Email:                  a.Email,
				Role:                   a.Role,
				CreatedAt:              a.CreatedAt,
				PasswordChangeRequired: a.PasswordChangeRequired,
				Locked:                 a.IsLocked(),
			})
		}
		writeJSON(w, http.StatusOK, views)

	case "POST":
		var input struct {
			Email    string
			Password string
			Role     string
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		deps := orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}
		id, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
			Email:                  input.Email,
			Password:               input.Password,
			Role:                   input.Role,
			PasswordChangeRequired: true,
		}, deps)
		if err != nil {
			if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			if errors.Is(err, accountDomain.ErrInvalidRole) || errors.Is(err, accountDomain.ErrPasswordTooShort) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"ID": id})

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}
