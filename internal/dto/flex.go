package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for client timestamps, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Epoch-millisecond bounds: 0001-01-01T00:00:00Z to 9999-12-31T23:59:59.999Z.
const (
	minEpochMillis = -62135596800000
	maxEpochMillis = 253402300799999
)

func fromEpochMillis(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || ms < minEpochMillis || ms > maxEpochMillis {
		return time.Time{}, fmt.Errorf("epoch milliseconds %v out of range", ms)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

// ParseTime parses an ISO-8601 style timestamp, a bare date, or a decimal
// epoch in milliseconds. Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpochMillis(float64(ms))
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// FlexTime is an optional timestamp that accepts the formats ParseTime does,
// either quoted or as a bare epoch-millisecond number. Null, "" and absent
// leave Valid false.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = FlexTime{}
		return nil
	}

	var raw string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*t = FlexTime{}
			return nil
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("timestamp must be a string or number: %w", err)
		}
		ms, err := n.Float64()
		if err != nil {
			return err
		}
		parsed, err := fromEpochMillis(ms)
		if err != nil {
			return err
		}
		*t = FlexTime{Time: parsed, Valid: true}
		return nil
	}

	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	*t = FlexTime{Time: parsed, Valid: true}
	return nil
}

// Ptr returns nil for an unset value.
func (t FlexTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// FlexString accepts a JSON string or number. Offline clients are not
// consistent about whether local ids and phone numbers are numeric.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}
