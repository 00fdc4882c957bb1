package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/member"

	"github.com/google/uuid"
)

// MemberStore defines the interface for member persistence.
type MemberStore interface {
	Save(ctx context.Context, m member.Member) error
	GetByID(ctx context.Context, id string) (member.Member, error)
	GetByDocument(ctx context.Context, document string) (member.Member, error)
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name           string
	Document       string
	Email          string
	Phone          string
	PlanID         string
	EnrollmentDate time.Time // zero means today
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStore
	PlanStore   RecordPaymentPlanStore // optional: validates the plan reference
	Now         func() time.Time
}

var ErrDuplicateDocument = errors.New("a member with that document already exists")

// ExecuteRegisterMember coordinates member registration.
// PRE: Non-empty name; document unique when provided
// POST: Member created with ID and enrollment date
// INVARIANT: Registration alone never grants a membership window; that
// requires a plan with a duration or an explicit expiration
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (string, error) {
	if input.Name == "" {
		return "", errors.New("name cannot be empty")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	if input.Document != "" {
		if _, err := deps.MemberStore.GetByDocument(ctx, input.Document); err == nil {
			return "", ErrDuplicateDocument
		}
	}

	planName := ""
	if input.PlanID != "" && deps.PlanStore != nil {
		p, err := deps.PlanStore.GetByID(ctx, input.PlanID)
		if err != nil {
			return "", ErrPlanNotFound
		}
		planName = p.Name
	}

	enrollment := input.EnrollmentDate
	if enrollment.IsZero() {
		enrollment = now()
	}

	m := member.Member{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Document:       input.Document,
		Email:          input.Email,
		Phone:          input.Phone,
		PlanID:         input.PlanID,
		PlanNameHint:   planName,
		EnrollmentDate: enrollment,
	}

	if err := m.Validate(); err != nil {
		return "", err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return "", err
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "name", m.Name, "plan_id", m.PlanID)
	return m.ID, nil
}
