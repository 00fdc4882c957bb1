package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/plan"

	"github.com/google/uuid"
)

// Renewal modes control what happens when a payment arrives for a member
// whose membership has not expired yet.
const (
	RenewalModePrevent = "prevent" // reject the payment
	RenewalModeAllow   = "allow"   // stack the new period onto the current expiration; the default
)

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanInactive      = errors.New("plan is not active")
	ErrPlanHasNoDuration = errors.New("plan has no duration; expiration cannot be computed")

	// ErrMemberUpdateDeferred reports that the payment row was written but
	// the member update failed and was queued for outbox replay.
	ErrMemberUpdateDeferred = errors.New("payment recorded but member update was deferred for replay")
)

// AlreadyActiveError is returned in prevent mode when the member's current
// membership is still running.
type AlreadyActiveError struct {
	Until time.Time
}

func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("membership is still active until %s", e.Until.Format("2006-01-02"))
}

// RecordPaymentMemberStore defines the member store interface needed by RecordPayment.
type RecordPaymentMemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// RecordPaymentPlanStore defines the plan store interface needed by RecordPayment.
type RecordPaymentPlanStore interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
}

// PaymentStore defines the interface for payment persistence.
type PaymentStore interface {
	Save(ctx context.Context, p payment.Payment) error
}

// OutboxSaver defines the outbox interface needed to defer failed writes.
type OutboxSaver interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// RecordPaymentInput carries input for the payment/renewal orchestrator.
type RecordPaymentInput struct {
	MemberID    string
	PlanID      string    // empty falls back to the member's current plan
	Amount      float64   // <= 0 means charge the plan price
	PaymentDate time.Time // zero means now
	Method      string
	Note        string
	RecordedBy  string
	Mode        string // RenewalModeAllow (the default) or RenewalModePrevent
}

// RecordPaymentResult carries the outcome of a recorded payment.
type RecordPaymentResult struct {
	PaymentID     string
	Amount        float64
	NewExpiration time.Time
	Stacked       bool // renewal extended a still-running membership
	Deferred      bool // member update failed and was queued for replay
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	MemberStore  RecordPaymentMemberStore
	PlanStore    RecordPaymentPlanStore
	PaymentStore PaymentStore
	OutboxStore  OutboxSaver // optional: nil turns a failed member update into a hard error
	Now          func() time.Time
}

// memberExpirationPayload is the outbox payload used to replay a member
// update whose payment row was already written.
type memberExpirationPayload struct {
	MemberID     string `json:"member_id"`
	PlanID       string `json:"plan_id"`
	PlanNameHint string `json:"plan_name_hint"`
	Expiration   string `json:"expiration"` // YYYY-MM-DD
}

// ExecuteRecordPayment records a membership payment and advances the
// member's expiration date.
//
// The new expiration is computed from the plan duration in calendar days.
// If the member's current membership is still running, prevent mode rejects
// the payment and allow mode stacks the new period on top of the current
// expiration; otherwise the period starts today.
//
// The payment row is written before the member row. If the member update
// fails after the payment was persisted, the update is queued in the outbox
// for idempotent replay and ErrMemberUpdateDeferred is returned so the
// operator sees the failure.
//
// PRE: MemberID references an existing row; a plan resolves from the input or the member
// POST: Payment persisted; member expiration advanced or replay queued
// INVARIANT: A completed payment is never silently discarded
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (RecordPaymentResult, error) {
	if input.MemberID == "" {
		return RecordPaymentResult{}, errors.New("member ID is required")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return RecordPaymentResult{}, ErrMemberNotFound
	}
	planID := input.PlanID
	if planID == "" {
		planID = m.PlanID
	}
	if planID == "" {
		return RecordPaymentResult{}, ErrPlanNotFound
	}
	p, err := deps.PlanStore.GetByID(ctx, planID)
	if err != nil {
		return RecordPaymentResult{}, ErrPlanNotFound
	}
	if !p.Active {
		return RecordPaymentResult{}, ErrPlanInactive
	}
	if p.DurationDays <= 0 {
		return RecordPaymentResult{}, ErrPlanHasNoDuration
	}

	asOf := now()
	today := membership.Midnight(asOf)

	// The running-membership check derives against the member's current
	// plan, which may differ from the plan being purchased.
	var currentPlan *plan.Plan
	switch {
	case m.PlanID == p.ID:
		currentPlan = &p
	case m.PlanID != "":
		if cp, err := deps.PlanStore.GetByID(ctx, m.PlanID); err == nil {
			currentPlan = &cp
		}
	}

	// Base date for the new period: the current expiration when it is still
	// in the future and stacking is allowed, otherwise today.
	base := today
	stacked := false
	if current, ok := membership.ResolveExpiration(m, currentPlan); ok && current.After(today) {
		switch input.Mode {
		case RenewalModePrevent:
			return RecordPaymentResult{}, &AlreadyActiveError{Until: current}
		default: // allow: an early renewal stacks, paid days are never wasted
			base = current
			stacked = true
		}
	}
	newExpiration := membership.AddDays(base, p.DurationDays)

	amount := input.Amount
	if amount <= 0 {
		amount = p.Price
	}
	method := input.Method
	if method == "" {
		method = payment.MethodCash
	}
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = asOf
	}

	pay := payment.Payment{
		ID:          uuid.New().String(),
		MemberID:    m.ID,
		PlanID:      p.ID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      method,
		Status:      payment.StatusCompleted,
		Note:        input.Note,
		RecordedBy:  input.RecordedBy,
	}
	if err := pay.Validate(); err != nil {
		return RecordPaymentResult{}, err
	}
	if err := deps.PaymentStore.Save(ctx, pay); err != nil {
		return RecordPaymentResult{}, fmt.Errorf("failed to save payment: %w", err)
	}

	m.PlanID = p.ID
	m.PlanNameHint = p.Name
	m.ExpirationDate = newExpiration
	m.StatusHint = member.StatusHintActive
	if m.EnrollmentDate.IsZero() {
		m.EnrollmentDate = today
	}

	result := RecordPaymentResult{
		PaymentID:     pay.ID,
		Amount:        amount,
		NewExpiration: newExpiration,
		Stacked:       stacked,
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		// The payment is already on disk. Queue the member update for
		// replay rather than failing the whole operation.
		slog.Error("payment_event", "event", "member_update_failed", "member_id", m.ID, "payment_id", pay.ID, "error", err)
		if deps.OutboxStore == nil {
			return result, fmt.Errorf("payment recorded but member update failed: %w", err)
		}
		payload, _ := json.Marshal(memberExpirationPayload{
			MemberID:     m.ID,
			PlanID:       p.ID,
			PlanNameHint: p.Name,
			Expiration:   newExpiration.Format("2006-01-02"),
		})
		entry := outbox.Entry{
			ID:          uuid.New().String(),
			ActionType:  outbox.ActionTypeMemberExpiration,
			Payload:     string(payload),
			Status:      outbox.StatusPending,
			MaxAttempts: 5,
			CreatedAt:   asOf,
		}
		if saveErr := deps.OutboxStore.Save(ctx, entry); saveErr != nil {
			return result, fmt.Errorf("payment recorded but member update failed and could not be queued: %w", saveErr)
		}
		result.Deferred = true
		slog.Warn("payment_event", "event", "member_update_deferred", "member_id", m.ID, "outbox_id", entry.ID)
		return result, fmt.Errorf("%w: %v", ErrMemberUpdateDeferred, err)
	}

	slog.Info("payment_event", "event", "payment_recorded",
		"payment_id", pay.ID, "member_id", m.ID, "plan_id", p.ID,
		"amount", amount, "new_expiration", newExpiration.Format("2006-01-02"), "stacked", stacked)
	return result, nil
}
