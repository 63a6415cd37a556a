package model

import (
	"fmt"
	"strings"
	"time"
)

// timeFormats lists the timestamp layouts the backend is known to emit.
// FastAPI serializes naive datetimes without a zone offset, so plain
// RFC3339 parsing is not enough.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time is a time.Time that unmarshals from any timestamp format the
// backend produces and marshals back as RFC3339.
type Time struct {
	time.Time
}

// NewTime wraps a time.Time.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// UnmarshalJSON parses a JSON string against the known backend layouts.
// Null and the empty string leave the zero value in place.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timeFormats {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON renders the time as an RFC3339 JSON string, or null for
// the zero value.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// IsSet reports whether the time holds a non-zero value.
func (t Time) IsSet() bool {
	return !t.IsZero()
}
