package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/plan"

	"github.com/google/uuid"
)

// AttendanceStore defines the interface for attendance persistence.
type AttendanceStore interface {
	Save(ctx context.Context, a attendance.Attendance) error
}

// CheckInMemberStore defines the member store interface needed for check-in.
type CheckInMemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	SearchByName(ctx context.Context, query string, limit int) ([]member.Member, error)
}

// CheckInPlanStore defines the plan store interface needed to derive status.
type CheckInPlanStore interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
}

var (
	ErrMemberArchived    = errors.New("archived members cannot check in")
	ErrNoMembership      = errors.New("member has no determinable membership")
	ErrMembershipExpired = errors.New("membership has expired")
)

// ExpiringSoonError is returned when a member inside the expiring-soon
// window checks in without the front desk acknowledging the warning.
type ExpiringSoonError struct {
	Until time.Time
}

func (e *ExpiringSoonError) Error() string {
	return fmt.Sprintf("membership expires on %s; confirmation required", e.Until.Format("2006-01-02"))
}

// SearchMembersInput carries input for name-based member search.
type SearchMembersInput struct {
	Query string
	Limit int
}

// SearchMembersResult carries the shortlist of matching members.
type SearchMembersResult struct {
	Members []member.Member
}

// SearchMembersDeps holds dependencies for SearchMembers.
type SearchMembersDeps struct {
	MemberStore CheckInMemberStore
}

// ExecuteSearchMembers performs a fuzzy search over name, document and email
// and returns a shortlist for the check-in autocomplete.
// PRE: Query must be non-empty
// POST: Returns up to Limit matching non-archived members
func ExecuteSearchMembers(ctx context.Context, input SearchMembersInput, deps SearchMembersDeps) (SearchMembersResult, error) {
	if input.Query == "" {
		return SearchMembersResult{Members: []member.Member{}}, nil
	}
	if input.Limit <= 0 {
		input.Limit = 10
	}

	members, err := deps.MemberStore.SearchByName(ctx, input.Query, input.Limit)
	if err != nil {
		return SearchMembersResult{}, err
	}
	if members == nil {
		members = []member.Member{}
	}

	return SearchMembersResult{Members: members}, nil
}

// CheckInMemberInput carries input for the check-in orchestrator.
// MemberID is obtained by the caller after the user selects from the
// name-search shortlist.
type CheckInMemberInput struct {
	MemberID string
	ClassID  string // optional: which class they're checking into
	// AcknowledgeExpiring lets the front desk wave through a member whose
	// membership is inside the expiring-soon window.
	AcknowledgeExpiring bool
	RecordedBy          string
}

// CheckInMemberResult carries the recorded attendance and derived status.
type CheckInMemberResult struct {
	AttendanceID string
	Status       membership.Status
	Expiration   time.Time
}

// CheckInMemberDeps holds dependencies for CheckInMember.
type CheckInMemberDeps struct {
	MemberStore     CheckInMemberStore
	PlanStore       CheckInPlanStore
	AttendanceStore AttendanceStore
	Now             func() time.Time
}

// ExecuteCheckInMember gates entry on the derived membership status and
// records attendance.
//
// The status is always recomputed from the expiration data; the member's
// stored StatusHint is never consulted. Expired memberships and members
// with no determinable membership are refused. Members inside the
// expiring-soon window pass only with an explicit acknowledgement.
//
// PRE: MemberID is a valid member selected from the name-search shortlist
// POST: Attendance record created with EntryTime=now when admitted
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInMemberDeps) (CheckInMemberResult, error) {
	if input.MemberID == "" {
		return CheckInMemberResult{}, errors.New("member must be selected from the search results")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return CheckInMemberResult{}, ErrMemberNotFound
	}
	if m.Archived {
		return CheckInMemberResult{}, ErrMemberArchived
	}

	var memberPlan *plan.Plan
	if m.PlanID != "" && deps.PlanStore != nil {
		if p, err := deps.PlanStore.GetByID(ctx, m.PlanID); err == nil {
			memberPlan = &p
		}
	}

	asOf := now()
	status, ok := membership.StatusOf(m, memberPlan, asOf)
	if !ok {
		slog.Info("checkin_event", "event", "checkin_refused", "member_id", m.ID, "reason", "no_membership")
		return CheckInMemberResult{}, ErrNoMembership
	}
	expiration, _ := membership.ResolveExpiration(m, memberPlan)

	switch status {
	case membership.StatusExpired:
		slog.Info("checkin_event", "event", "checkin_refused", "member_id", m.ID, "reason", "expired", "expiration", expiration.Format("2006-01-02"))
		return CheckInMemberResult{Status: status, Expiration: expiration}, ErrMembershipExpired
	case membership.StatusExpiringSoon:
		if !input.AcknowledgeExpiring {
			slog.Info("checkin_event", "event", "checkin_confirm_required", "member_id", m.ID, "expiration", expiration.Format("2006-01-02"))
			return CheckInMemberResult{Status: status, Expiration: expiration}, &ExpiringSoonError{Until: expiration}
		}
	}

	a := attendance.Attendance{
		ID:         uuid.New().String(),
		MemberID:   m.ID,
		EntryTime:  asOf,
		ClassID:    input.ClassID,
		RecordedBy: input.RecordedBy,
	}
	if err := a.Validate(); err != nil {
		return CheckInMemberResult{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, a); err != nil {
		return CheckInMemberResult{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_in", "member_id", m.ID, "name", m.Name, "status", status, "class_id", input.ClassID)

	return CheckInMemberResult{AttendanceID: a.ID, Status: status, Expiration: expiration}, nil
}
