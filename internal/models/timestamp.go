// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package models

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Timestamp is a creation instant that tolerates malformed wire values.
// A missing, null or unparseable timestamp decodes to the zero time so
// that ordering still works: such records sort as time zero instead of
// failing the whole message decode.
type Timestamp struct {
	time.Time
}

// Now returns the current instant in UTC.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// At wraps an explicit instant. Useful in tests.
func At(t time.Time) Timestamp {
	return Timestamp{t}
}

// MarshalJSON encodes the instant as RFC3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC3339 strings and Unix epoch numbers
// (seconds or milliseconds). Anything else yields the zero time; it
// never returns an error.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}

	s := string(data)
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, str); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Heuristic: values this large are epoch milliseconds.
		if n > 1e12 {
			t.Time = time.UnixMilli(n).UTC()
		} else {
			t.Time = time.Unix(n, 0).UTC()
		}
	}
	return nil
}
