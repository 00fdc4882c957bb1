package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxDocumentLength = 30
)

// Advisory status hints written by the renewal flow. These are denormalized
// display values only; gating always recomputes the derived status.
const (
	StatusHintActive   = "active"
	StatusHintInactive = "inactive"
)

// Domain errors
var (
	ErrAlreadyArchived = errors.New("member is already archived")
	ErrNotArchived     = errors.New("member is not archived")
)

// Member holds state for a gym member.
//
// StatusHint and PlanNameHint are advisory copies maintained by the renewal
// flow for list rendering. They are never authoritative: the effective
// membership status is derived from ExpirationDate/EnrollmentDate plus the
// plan duration (see the membership package).
type Member struct {
	ID             string
	Name           string
	Document       string // national id / passport number
	Email          string
	Phone          string
	PlanID         string    // current plan reference; empty means none
	PlanNameHint   string    // advisory copy of the plan name
	EnrollmentDate  time.Time // date the member joined; zero means unknown
	ExpirationDate  time.Time // explicit expiration override; zero means unset
	StatusHint      string    // advisory free text, e.g. "active"
	ReminderSentFor time.Time // expiration the last renewal reminder covered; zero means never reminded
	Archived        bool
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email must contain '@' when set
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if len(m.Document) > MaxDocumentLength {
		return errors.New("member document cannot exceed 30 characters")
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return errors.New("member email must be valid")
	}
	return nil
}

// HasPlan returns true if the member currently references a plan.
// INVARIANT: Member fields are not mutated
func (m *Member) HasPlan() bool {
	return m.PlanID != ""
}

// enrollmentFieldSynonyms lists every historical spelling of the enrollment
// date field, in precedence order. Legacy exports renamed the column more
// than once; the first parsable match wins. Declared only here so the
// precedence is testable in isolation.
var enrollmentFieldSynonyms = []string{
	"enrollment_date",
	"registration_date",
	"joined_at",
	"signup_date",
}

// ResolveEnrollmentDate extracts the enrollment date from a loosely-typed
// member document, tolerating legacy field spellings. An unparsable value is
// treated as absent, never as an error.
// PRE: doc may be nil
// POST: Returned time is at midnight local time when ok is true
func ResolveEnrollmentDate(doc map[string]any) (time.Time, bool) {
	for _, name := range enrollmentFieldSynonyms {
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, ok := parseDate(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate accepts the date formats legacy exports used.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), true
		}
	}
	return time.Time{}, false
}

// Archive marks the member as archived.
// PRE: Member is not already archived
// POST: Archived is true
func (m *Member) Archive() error {
	if m.Archived {
		return ErrAlreadyArchived
	}
	m.Archived = true
	return nil
}

// Restore clears the archived flag.
// PRE: Member is currently archived
// POST: Archived is false
func (m *Member) Restore() error {
	if !m.Archived {
		return ErrNotArchived
	}
	m.Archived = false
	return nil
}
