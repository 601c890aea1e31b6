package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a request time that also accepts the zoneless forms browsers
// submit from date and datetime-local inputs.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

func (ts Timestamp) Time() time.Time {
	return time.Time(ts)
}

// ParseTimestamp returns the *time.ParseError of the first layout when no
// layout matches.
func ParseTimestamp(s string) (Timestamp, error) {
	var first error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp(t), nil
		}
		if first == nil {
			first = err
		}
	}
	return Timestamp{}, first
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time())
}
