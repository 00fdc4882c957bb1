package membership

import (
	"math"
	"time"

	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/plan"
)

// Status is the derived membership status used for badges and gating.
type Status string

// Derived status values.
const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// ExpiringSoonWindowDays is the inclusive number of days before expiration
// during which a membership counts as expiring soon. Exactly 7 days remaining
// is still expiring soon; 8 is active.
const ExpiringSoonWindowDays = 7

// Midnight truncates a time to the start of its calendar day in local time.
// PRE: t is any time
// POST: Returned time has zero clock components, same date and location
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays advances a date by n calendar days: n midnight-to-midnight
// increments, not n*24h of elapsed time. DST transitions do not shift the
// resulting date.
// POST: Returned time is at midnight
func AddDays(t time.Time, days int) time.Time {
	return Midnight(t).AddDate(0, 0, days)
}

// DaysBetween counts calendar days from one date to another. Both inputs are
// truncated to midnight first, so clock time never affects the count.
// POST: Negative when to is before from
func DaysBetween(from, to time.Time) int {
	f := Midnight(from)
	t := Midnight(to)
	// Rounding absorbs the one-hour skew a DST transition introduces.
	return int(math.Round(t.Sub(f).Hours() / 24))
}

// ResolveExpiration computes a member's effective expiration date.
//
// An explicitly stored expiration date wins unconditionally; it is never
// blended with the plan duration. Otherwise the expiration is derived from
// the enrollment date plus the plan's duration in calendar days. When neither
// is determinable the member has no membership window and ok is false.
// PRE: p may be nil (plan reference unresolved)
// POST: Returned time is at midnight when ok is true
func ResolveExpiration(m member.Member, p *plan.Plan) (time.Time, bool) {
	if !m.ExpirationDate.IsZero() {
		return Midnight(m.ExpirationDate), true
	}
	if p != nil && p.DurationDays > 0 && !m.EnrollmentDate.IsZero() {
		return AddDays(m.EnrollmentDate, p.DurationDays), true
	}
	return time.Time{}, false
}

// Classify maps an expiration date to a derived status as of a reference
// time. Comparison is calendar-day granular: the clock time of either input
// never changes the result.
// PRE: expiration was produced by ResolveExpiration
// POST: Expired for past dates, ExpiringSoon for 0..7 days remaining
// inclusive, Active beyond that
func Classify(expiration, asOf time.Time) Status {
	remaining := DaysBetween(asOf, expiration)
	switch {
	case remaining < 0:
		return StatusExpired
	case remaining <= ExpiringSoonWindowDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// StatusOf resolves and classifies in one step. ok is false when the member
// has no determinable membership window; callers must render "no membership"
// rather than defaulting to any status.
// INVARIANT: Never consults the member's stored StatusHint
func StatusOf(m member.Member, p *plan.Plan, asOf time.Time) (Status, bool) {
	exp, ok := ResolveExpiration(m, p)
	if !ok {
		return "", false
	}
	return Classify(exp, asOf), true
}
