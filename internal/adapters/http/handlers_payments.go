package web

import (
	"errors"
	"net/http"
	"time"

	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/application/orchestrators"
	bookingDomain "gymdesk/internal/domain/booking"
	paymentDomain "gymdesk/internal/domain/payment"

	bookingStore "gymdesk/internal/adapters/storage/booking"
)

// handlePayments handles GET (list) and POST (record) for /api/payments.
func handlePayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		filter := paymentStore.ListFilter{
			MemberID:  r.URL.Query().Get("member_id"),
			Status:    r.URL.Query().Get("status"),
			Method:    r.URL.Query().Get("method"),
			StartDate: r.URL.Query().Get("start"),
			EndDate:   r.URL.Query().Get("end"),
			Limit:     parseIntParam(r, "limit", 100),
			Offset:    parseIntParam(r, "offset", 0),
		}
		payments, err := stores.PaymentStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		if payments == nil {
			payments = []paymentDomain.Payment{}
		}
		writeJSON(w, http.StatusOK, payments)

	case "POST":
		sess, ok := requireDesk(w, r)
		if !ok {
			return
		}
		var body struct {
			MemberID    string
			PlanID      string
			Amount      float64
			PaymentDate string // YYYY-MM-DD, optional
			Method      string
			Note        string
			Mode        string
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		input := orchestrators.RecordPaymentInput{
			MemberID:   body.MemberID,
			PlanID:     body.PlanID,
			Amount:     body.Amount,
			Method:     body.Method,
			Note:       body.Note,
			RecordedBy: sess.AccountID,
			Mode:       body.Mode,
		}
		if body.PaymentDate != "" {
			d, derr := time.ParseInLocation("2006-01-02", body.PaymentDate, time.Local)
			if derr != nil {
				http.Error(w, "PaymentDate must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			input.PaymentDate = d
		}

		deps := orchestrators.RecordPaymentDeps{
			MemberStore:  stores.MemberStore,
			PlanStore:    stores.PlanStore,
			PaymentStore: stores.PaymentStore,
			OutboxStore:  stores.OutboxStore,
			Now:          timeNow,
		}
		result, err := orchestrators.ExecuteRecordPayment(ctx, input, deps)
		if err != nil {
			var active *orchestrators.AlreadyActiveError
			switch {
			case errors.Is(err, orchestrators.ErrMemberUpdateDeferred):
				// The payment row survived; the member update was queued
				// for replay. Surface the failure with the created payment.
				writeJSON(w, http.StatusAccepted, map[string]any{
					"Error":     err.Error(),
					"PaymentID": result.PaymentID,
					"Deferred":  true,
				})
			case errors.Is(err, orchestrators.ErrMemberNotFound),
				errors.Is(err, orchestrators.ErrPlanNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.As(err, &active):
				writeJSON(w, http.StatusConflict, map[string]any{
					"Error": err.Error(),
					"Until": active.Until.Format("2006-01-02"),
				})
			case errors.Is(err, orchestrators.ErrPlanInactive),
				errors.Is(err, orchestrators.ErrPlanHasNoDuration):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, http.StatusCreated, result)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// --- Bookings ---

// handleBookings handles GET (list) and POST (create) for /api/bookings.
func handleBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		filter := bookingStore.ListFilter{
			MemberID: r.URL.Query().Get("member_id"),
			ClassID:  r.URL.Query().Get("class_id"),
			Date:     r.URL.Query().Get("date"),
			Status:   r.URL.Query().Get("status"),
			Limit:    parseIntParam(r, "limit", 100),
			Offset:   parseIntParam(r, "offset", 0),
		}
		bookings, err := stores.BookingStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		if bookings == nil {
			bookings = []bookingDomain.Booking{}
		}
		writeJSON(w, http.StatusOK, bookings)

	case "POST":
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		var body struct {
			MemberID string
			ClassID  string
			Date     string // YYYY-MM-DD
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			http.Error(w, "Date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		deps := orchestrators.BookClassDeps{
			MemberStore:  stores.MemberStore,
			PlanStore:    stores.PlanStore,
			ClassStore:   stores.ClassStore,
			BookingStore: stores.BookingStore,
			Now:          timeNow,
		}
		id, err := orchestrators.ExecuteBookClass(ctx, orchestrators.BookClassInput{
			MemberID: body.MemberID,
			ClassID:  body.ClassID,
			Date:     date,
		}, deps)
		if err != nil {
			var full *orchestrators.ClassFullError
			switch {
			case errors.Is(err, orchestrators.ErrMemberNotFound),
				errors.Is(err, orchestrators.ErrClassNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.As(err, &full):
				writeJSON(w, http.StatusConflict, map[string]any{
					"Error":    err.Error(),
					"Capacity": full.Capacity,
				})
			case errors.Is(err, orchestrators.ErrAlreadyBooked),
				errors.Is(err, orchestrators.ErrClassInactive),
				errors.Is(err, orchestrators.ErrMembershipExpired),
				errors.Is(err, orchestrators.ErrNoMembership),
				errors.Is(err, orchestrators.ErrMemberArchived):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, orchestrators.ErrWeekdayMismatch):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"ID": id})

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleBookingCancel handles POST /api/bookings/cancel with {BookingID}.
func handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var input orchestrators.CancelBookingInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	deps := orchestrators.CancelBookingDeps{BookingStore: stores.BookingStore}
	if err := orchestrators.ExecuteCancelBooking(r.Context(), input, deps); err != nil {
		if isNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBookingAttended handles POST /api/bookings/attended with {BookingID}.
func handleBookingAttended(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var input orchestrators.MarkBookingAttendedInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	deps := orchestrators.CancelBookingDeps{BookingStore: stores.BookingStore}
	if err := orchestrators.ExecuteMarkBookingAttended(r.Context(), input, deps); err != nil {
		if isNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
