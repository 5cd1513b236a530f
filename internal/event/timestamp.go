package event

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// NaiveLayout renders wall-clock values with no offset.
	NaiveLayout = "2006-01-02T15:04:05"
	// ZonedLayout renders zone-aware values with a numeric offset.
	ZonedLayout = "2006-01-02T15:04:05-07:00"
)

// Timestamp is a wall-clock value that is either naive (no zone information,
// read as local time of the source) or zone-aware. Sources disagree on which
// one they publish, and the distinction is kept as-is through storage.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

// Naive returns the wall clock of t with its location discarded.
func Naive(t time.Time) Timestamp {
	return Timestamp{
		Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
	}
}

// InZone returns t as a zone-aware timestamp.
func InZone(t time.Time) Timestamp {
	return Timestamp{Time: t, Zoned: true}
}

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero()
}

// Weekday returns the day-of-week name of the wall clock.
func (ts Timestamp) Weekday() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time.Weekday().String()
}

// Before compares wall clocks when either side is naive, instants otherwise.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Zoned && other.Zoned {
		return ts.Time.Before(other.Time)
	}
	return Naive(ts.Time).Time.Before(Naive(other.Time).Time)
}

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	if ts.Zoned {
		return ts.Time.Format(ZonedLayout)
	}
	return ts.Time.Format(NaiveLayout)
}

// ParseTimestamp reads a value written by String. A trailing offset or "Z"
// yields a zone-aware timestamp; anything else is naive.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, ZonedLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return InZone(t), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Naive(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

// MarshalJSON writes null for the zero value.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts null or a timestamp string.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// Scan implements sql.Scanner. Values are stored as text so that naive and
// zone-aware timestamps survive a round trip.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = Timestamp{}
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	case []byte:
		return ts.Scan(string(v))
	case time.Time:
		*ts = InZone(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

// Value implements driver.Valuer.
func (ts Timestamp) Value() (driver.Value, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.String(), nil
}
