package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
)

var (
	zonedISO = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04-07:00",
		"2006-01-02T15:04:05-0700",
	}
	naiveISO = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02T15",
		"2006-01-02",
	}
)

// ParseISO reads an ISO 8601 timestamp as published. A value carrying an
// offset or "Z" becomes zone-aware; a value without one stays naive.
func ParseISO(s string) (event.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return event.Timestamp{}, fmt.Errorf("empty timestamp")
	}
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range zonedISO {
		if t, err := time.Parse(layout, s); err == nil {
			return event.InZone(t), nil
		}
	}
	for _, layout := range naiveISO {
		if t, err := time.Parse(layout, s); err == nil {
			return event.Naive(t), nil
		}
	}
	return event.Timestamp{}, fmt.Errorf("parsing ISO timestamp %q", s)
}

// ISOToEastern reads an ISO 8601 timestamp and converts it to America/New_York.
// Values without an offset are taken as UTC.
func ISOToEastern(s string) (event.Timestamp, error) {
	ts, err := ParseISO(s)
	if err != nil {
		return event.Timestamp{}, err
	}
	return toEastern(ts), nil
}

// toEastern converts a timestamp to America/New_York, reading naive values as UTC.
func toEastern(ts event.Timestamp) event.Timestamp {
	return event.InZone(ts.Time.In(Eastern))
}

// EpochToEastern converts Unix seconds to the Eastern wall clock, kept naive.
func EpochToEastern(sec int64) event.Timestamp {
	return event.Naive(time.Unix(sec, 0).In(Eastern))
}
