package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without an offset read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp reads the ISO-8601 forms clients send: full RFC 3339,
// date-time without an offset, date-time without seconds, or a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Timestamp is a request field holding an ISO-8601 value. A value that
// cannot be read does not fail decoding; it leaves Valid false so the
// handler can report the field by name.
type Timestamp struct {
	Time  time.Time
	valid bool
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC(), valid: true}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time, t.valid = time.Time{}, false

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return nil
	}
	t.Time, t.valid = parsed, true
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

func (t Timestamp) Valid() bool {
	return t.valid
}
