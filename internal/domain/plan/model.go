package plan

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName       = errors.New("plan name cannot be empty")
	ErrNegativePrice   = errors.New("plan price cannot be negative")
	ErrInvalidDuration = errors.New("plan duration must be zero or more days")
)

// durationFieldSynonyms lists every historical spelling of the plan duration
// field, in precedence order. Older exports of the dashboard wrote the field
// under different names across schema migrations; the first non-null match
// wins. The order is declared only here so it can be tested in isolation.
var durationFieldSynonyms = []string{
	"duration_days",
	"duration",
	"durationDays",
	"durationdays",
	"length_days",
	"days",
}

// Plan represents a membership product: a price and a validity window in
// calendar days. Plans are read-only inputs to the renewal logic.
type Plan struct {
	ID           string
	Name         string
	Price        float64
	DurationDays int
	Active       bool
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: DurationDays >= 0, Price >= 0
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return errors.New("plan name cannot exceed 100 characters")
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if p.DurationDays < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ResolveDurationDays extracts the duration from a loosely-typed plan
// document, tolerating every legacy spelling of the field. Returns false when
// no spelling carries a usable value.
// PRE: doc may be nil
// POST: Returns the first non-null numeric match in precedence order
func ResolveDurationDays(doc map[string]any) (int, bool) {
	for _, name := range durationFieldSynonyms {
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		if n, ok := asDays(v); ok {
			return n, true
		}
	}
	return 0, false
}

// asDays coerces a JSON value to a day count. Legacy exports stored the
// duration as a number or as a numeric string.
func asDays(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// UnmarshalJSON decodes a plan record, accepting legacy duration spellings
// and case-insensitive field names. A payload produced by any historical
// dashboard version decodes to the same Plan. Fields absent from the payload
// are left untouched, so a pre-populated Plan acts as the defaults.
// POST: DurationDays is resolved via ResolveDurationDays
func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc := make(map[string]any, len(raw))
	for k, v := range raw {
		doc[k] = v
	}
	for k, v := range raw {
		lk := strings.ToLower(k)
		if _, ok := doc[lk]; !ok {
			doc[lk] = v
		}
	}
	if v, ok := doc["id"].(string); ok {
		p.ID = v
	}
	if v, ok := doc["name"].(string); ok {
		p.Name = v
	}
	switch v := doc["price"].(type) {
	case float64:
		p.Price = v
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			p.Price = parsed
		}
	}
	if v, ok := doc["active"].(bool); ok {
		p.Active = v
	}
	if days, ok := ResolveDurationDays(doc); ok {
		p.DurationDays = days
	}
	return nil
}
