package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order. The API writes Python isoformat()
// values, which usually carry no zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a point in time decoded from an ISO-8601 string. Values
// without an offset are interpreted in the local zone.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parse timestamp %q: unsupported format", s)
}

// UnmarshalJSON accepts a string timestamp or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON writes RFC 3339 or null for the zero value.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

// JADate formats the date the way the ja-JP locale does, e.g. 2024/3/1.
func (ts Timestamp) JADate() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006/1/2")
}

// JATime formats the time of day the way the ja-JP locale does, e.g. 9:05:00.
func (ts Timestamp) JATime() string {
	if ts.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%02d:%02d", ts.Hour(), ts.Minute(), ts.Second())
}

// JADateTime joins JADate and JATime.
func (ts Timestamp) JADateTime() string {
	if ts.IsZero() {
		return ""
	}
	return ts.JADate() + " " + ts.JATime()
}

// LastUpdated is the freshness payload of the /last_updated endpoints.
type LastUpdated struct {
	LastUpdated Timestamp `json:"last_updated"`
}

// Statistics is the summary payload of the /statistics endpoint.
type Statistics struct {
	TotalPlayers int       `json:"total_players"`
	Teams        int       `json:"teams"`
	LastUpdated  Timestamp `json:"last_updated"`
}
