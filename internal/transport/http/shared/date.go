package shared

import (
	"strings"
	"time"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// OptionalDate parses a date field that may be blank. A blank field yields
// (nil, false); a malformed one records an issue on the validator.
func OptionalDate(v *Validator, field, raw string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil, false
	}
	return &parsed, true
}
