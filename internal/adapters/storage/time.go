package storage

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage format for date-only columns.
const DateLayout = "2006-01-02"

// ParseStoredTime parses a timestamp written by any supported layout.
// PRE: value is non-empty
// POST: Returns the parsed time or an error for unknown layouts
func ParseStoredTime(value string) (time.Time, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		DateLayout,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}

// NullTime formats t for storage, or returns nil for the zero value so the
// column is written as NULL.
func NullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

// NullDate formats t as a date-only value, or nil for the zero value.
func NullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(DateLayout)
}

// NullString returns nil for an empty string so the column is written as NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
