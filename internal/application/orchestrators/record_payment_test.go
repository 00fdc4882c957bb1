package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/plan"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func recordPaymentFixture() (*mockMemberStore, *mockPlanStore, *mockPaymentStore, *mockOutboxStore, RecordPaymentDeps) {
	members := newMockMemberStore()
	plans := newMockPlanStore()
	payments := &mockPaymentStore{}
	ob := &mockOutboxStore{}

	plans.plans["plan-month"] = plan.Plan{ID: "plan-month", Name: "Monthly", Price: 50, DurationDays: 30, Active: true}
	members.members["m1"] = member.Member{ID: "m1", Name: "Ana Torres", Document: "DOC-1"}

	deps := RecordPaymentDeps{
		MemberStore:  members,
		PlanStore:    plans,
		PaymentStore: payments,
		OutboxStore:  ob,
		Now:          func() time.Time { return date(2025, 6, 15) },
	}
	return members, plans, payments, ob, deps
}

// TestRecordPayment_FirstPayment verifies a payment for a member with no
// running membership starts the period today.
func TestRecordPayment_FirstPayment(t *testing.T) {
	members, _, payments, _, deps := recordPaymentFixture()

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", RecordedBy: "desk@gym.test",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}

	want := date(2025, 7, 15) // 2025-06-15 + 30 days
	if !result.NewExpiration.Equal(want) {
		t.Errorf("NewExpiration = %v, want %v", result.NewExpiration, want)
	}
	if result.Stacked {
		t.Error("Stacked = true, want false for first payment")
	}
	if result.Deferred {
		t.Error("Deferred = true, want false")
	}

	if len(payments.payments) != 1 {
		t.Fatalf("payments saved = %d, want 1", len(payments.payments))
	}
	p := payments.payments[0]
	if p.Amount != 50 {
		t.Errorf("Amount = %v, want plan price 50", p.Amount)
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("Status = %q, want completed", p.Status)
	}
	if p.Method != payment.MethodCash {
		t.Errorf("Method = %q, want default cash", p.Method)
	}

	m := members.members["m1"]
	if !m.ExpirationDate.Equal(want) {
		t.Errorf("member ExpirationDate = %v, want %v", m.ExpirationDate, want)
	}
	if m.PlanID != "plan-month" || m.PlanNameHint != "Monthly" {
		t.Errorf("plan refs = (%q, %q), want (plan-month, Monthly)", m.PlanID, m.PlanNameHint)
	}
	if m.StatusHint != member.StatusHintActive {
		t.Errorf("StatusHint = %q, want active", m.StatusHint)
	}
	if !m.EnrollmentDate.Equal(date(2025, 6, 15)) {
		t.Errorf("EnrollmentDate = %v, want backfilled to today", m.EnrollmentDate)
	}
}

// TestRecordPayment_PreventModeRejectsActive verifies prevent mode returns
// AlreadyActiveError when the current membership has not expired.
func TestRecordPayment_PreventModeRejectsActive(t *testing.T) {
	members, _, payments, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.ExpirationDate = date(2025, 6, 20) // still running on 2025-06-15
	members.members["m1"] = m

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Mode: RenewalModePrevent,
	}, deps)

	var active *AlreadyActiveError
	if !errors.As(err, &active) {
		t.Fatalf("err = %v, want AlreadyActiveError", err)
	}
	if !active.Until.Equal(date(2025, 6, 20)) {
		t.Errorf("Until = %v, want 2025-06-20", active.Until)
	}
	if len(payments.payments) != 0 {
		t.Errorf("payments saved = %d, want 0 on rejection", len(payments.payments))
	}
}

// TestRecordPayment_DefaultModeStacks verifies an empty mode behaves like
// allow: an early renewal stacks onto the running window instead of being
// rejected.
func TestRecordPayment_DefaultModeStacks(t *testing.T) {
	members, _, _, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.ExpirationDate = date(2025, 6, 20)
	members.members["m1"] = m

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v (default mode must not reject)", err)
	}

	want := date(2025, 7, 20) // stacked: 2025-06-20 + 30
	if !result.NewExpiration.Equal(want) {
		t.Errorf("NewExpiration = %v, want %v", result.NewExpiration, want)
	}
	if !result.Stacked {
		t.Error("Stacked = false, want true for default mode")
	}
}

// TestRecordPayment_PlanFallsBackToMemberPlan verifies an omitted plan ID
// resolves against the member's current plan.
func TestRecordPayment_PlanFallsBackToMemberPlan(t *testing.T) {
	members, _, payments, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.PlanID = "plan-month"
	members.members["m1"] = m

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v (member plan must resolve)", err)
	}
	if !result.NewExpiration.Equal(date(2025, 7, 15)) {
		t.Errorf("NewExpiration = %v, want 2025-07-15", result.NewExpiration)
	}
	if len(payments.payments) != 1 || payments.payments[0].PlanID != "plan-month" {
		t.Errorf("payments = %+v, want one row against plan-month", payments.payments)
	}
}

// TestRecordPayment_NoResolvablePlan verifies ErrPlanNotFound when neither
// the input nor the member carries a plan reference.
func TestRecordPayment_NoResolvablePlan(t *testing.T) {
	_, _, payments, _, deps := recordPaymentFixture()

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1",
	}, deps)
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("err = %v, want ErrPlanNotFound", err)
	}
	if len(payments.payments) != 0 {
		t.Errorf("payments saved = %d, want 0", len(payments.payments))
	}
}

// TestRecordPayment_ExplicitPaymentDateKept verifies a caller-supplied
// payment date lands on the row while the renewal math stays anchored on
// today.
func TestRecordPayment_ExplicitPaymentDateKept(t *testing.T) {
	_, _, payments, _, deps := recordPaymentFixture()

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", PaymentDate: date(2025, 6, 10),
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}
	if len(payments.payments) != 1 {
		t.Fatalf("payments saved = %d, want 1", len(payments.payments))
	}
	if !payments.payments[0].PaymentDate.Equal(date(2025, 6, 10)) {
		t.Errorf("PaymentDate = %v, want 2025-06-10", payments.payments[0].PaymentDate)
	}
	if !result.NewExpiration.Equal(date(2025, 7, 15)) {
		t.Errorf("NewExpiration = %v, want 2025-07-15 (anchored on today)", result.NewExpiration)
	}
}

// TestRecordPayment_AllowModeStacks verifies allow mode extends from the
// current expiration rather than from today.
func TestRecordPayment_AllowModeStacks(t *testing.T) {
	members, _, _, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.ExpirationDate = date(2025, 6, 20)
	members.members["m1"] = m

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Mode: RenewalModeAllow,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}

	want := date(2025, 7, 20) // stacked: 2025-06-20 + 30
	if !result.NewExpiration.Equal(want) {
		t.Errorf("NewExpiration = %v, want %v", result.NewExpiration, want)
	}
	if !result.Stacked {
		t.Error("Stacked = false, want true")
	}
}

// TestRecordPayment_ExpiredMembershipStartsToday verifies a lapsed
// membership restarts from today even in allow mode.
func TestRecordPayment_ExpiredMembershipStartsToday(t *testing.T) {
	members, _, _, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.ExpirationDate = date(2025, 6, 1) // already expired on 2025-06-15
	members.members["m1"] = m

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Mode: RenewalModeAllow,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}

	want := date(2025, 7, 15)
	if !result.NewExpiration.Equal(want) {
		t.Errorf("NewExpiration = %v, want %v (restart from today)", result.NewExpiration, want)
	}
	if result.Stacked {
		t.Error("Stacked = true, want false for lapsed membership")
	}
}

// TestRecordPayment_ExpiresTodayStartsToday verifies a membership expiring
// exactly today is not treated as still running.
func TestRecordPayment_ExpiresTodayStartsToday(t *testing.T) {
	members, _, _, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.ExpirationDate = date(2025, 6, 15)
	members.members["m1"] = m

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Mode: RenewalModePrevent,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v (expiry today must not block)", err)
	}
	if !result.NewExpiration.Equal(date(2025, 7, 15)) {
		t.Errorf("NewExpiration = %v, want 2025-07-15", result.NewExpiration)
	}
}

// TestRecordPayment_DerivedExpirationBlocks verifies the running-membership
// check also sees expirations derived from enrollment + plan duration.
func TestRecordPayment_DerivedExpirationBlocks(t *testing.T) {
	members, _, _, _, deps := recordPaymentFixture()
	m := members.members["m1"]
	m.PlanID = "plan-month"
	m.EnrollmentDate = date(2025, 6, 1) // derived expiry 2025-07-01, still running
	members.members["m1"] = m

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Mode: RenewalModePrevent,
	}, deps)

	var active *AlreadyActiveError
	if !errors.As(err, &active) {
		t.Fatalf("err = %v, want AlreadyActiveError from derived expiration", err)
	}
	if !active.Until.Equal(date(2025, 7, 1)) {
		t.Errorf("Until = %v, want derived 2025-07-01", active.Until)
	}
}

// TestRecordPayment_ExplicitAmountWins verifies a provided amount overrides
// the plan price.
func TestRecordPayment_ExplicitAmountWins(t *testing.T) {
	_, _, payments, _, deps := recordPaymentFixture()

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month", Amount: 35, Method: payment.MethodCard,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}
	if result.Amount != 35 {
		t.Errorf("Amount = %v, want 35", result.Amount)
	}
	if payments.payments[0].Method != payment.MethodCard {
		t.Errorf("Method = %q, want card", payments.payments[0].Method)
	}
}

// TestRecordPayment_UnknownMemberOrPlan verifies lookup failures map to
// the sentinel errors.
func TestRecordPayment_UnknownMemberOrPlan(t *testing.T) {
	_, _, _, _, deps := recordPaymentFixture()

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{MemberID: "ghost", PlanID: "plan-month"}, deps)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("err = %v, want ErrMemberNotFound", err)
	}

	_, err = ExecuteRecordPayment(context.Background(), RecordPaymentInput{MemberID: "m1", PlanID: "ghost"}, deps)
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("err = %v, want ErrPlanNotFound", err)
	}
}

// TestRecordPayment_ZeroDurationPlanRejected verifies a plan without a
// positive duration cannot be sold.
func TestRecordPayment_ZeroDurationPlanRejected(t *testing.T) {
	_, plans, payments, _, deps := recordPaymentFixture()
	plans.plans["plan-open"] = plan.Plan{ID: "plan-open", Name: "Open", Price: 10, DurationDays: 0, Active: true}

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{MemberID: "m1", PlanID: "plan-open"}, deps)
	if !errors.Is(err, ErrPlanHasNoDuration) {
		t.Errorf("err = %v, want ErrPlanHasNoDuration", err)
	}
	if len(payments.payments) != 0 {
		t.Errorf("payments saved = %d, want 0", len(payments.payments))
	}
}

// TestRecordPayment_InactivePlanRejected verifies retired plans cannot be sold.
func TestRecordPayment_InactivePlanRejected(t *testing.T) {
	_, plans, _, _, deps := recordPaymentFixture()
	plans.plans["plan-old"] = plan.Plan{ID: "plan-old", Name: "Legacy", Price: 20, DurationDays: 30, Active: false}

	_, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{MemberID: "m1", PlanID: "plan-old"}, deps)
	if !errors.Is(err, ErrPlanInactive) {
		t.Errorf("err = %v, want ErrPlanInactive", err)
	}
}

// TestRecordPayment_MemberUpdateFailureQueuesReplay verifies the outbox
// fallback: the payment survives, the member update is queued, and the
// failure is still surfaced to the caller.
func TestRecordPayment_MemberUpdateFailureQueuesReplay(t *testing.T) {
	members, _, payments, ob, deps := recordPaymentFixture()
	members.saveErr = errors.New("disk full")

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month",
	}, deps)
	if !errors.Is(err, ErrMemberUpdateDeferred) {
		t.Fatalf("err = %v, want ErrMemberUpdateDeferred", err)
	}
	if !result.Deferred {
		t.Fatal("Deferred = false, want true")
	}
	if len(payments.payments) != 1 {
		t.Fatalf("payments saved = %d, want 1", len(payments.payments))
	}
	if len(ob.entries) != 1 {
		t.Fatalf("outbox entries = %d, want 1", len(ob.entries))
	}

	entry := ob.entries[0]
	if entry.ActionType != outbox.ActionTypeMemberExpiration {
		t.Errorf("ActionType = %q, want member_expiration", entry.ActionType)
	}
	var payload memberExpirationPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		t.Fatalf("payload unmarshal: %v", err)
	}
	if payload.MemberID != "m1" || payload.Expiration != "2025-07-15" {
		t.Errorf("payload = %+v, want m1 / 2025-07-15", payload)
	}
}

// TestRecordPayment_MemberAndOutboxBothFail verifies the hard-error path
// when even the outbox write fails.
func TestRecordPayment_MemberAndOutboxBothFail(t *testing.T) {
	members, _, _, ob, deps := recordPaymentFixture()
	members.saveErr = errors.New("disk full")
	ob.saveErr = errors.New("disk really full")

	result, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{
		MemberID: "m1", PlanID: "plan-month",
	}, deps)
	if err == nil {
		t.Fatal("expected error when member update and outbox both fail")
	}
	if result.PaymentID == "" {
		t.Error("PaymentID should still be returned so the caller can reconcile")
	}
}
