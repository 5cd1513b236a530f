// Package normalize turns the free-text dates, clock times and ISO strings
// published by event sites into event.Timestamp values.
//
// Everything here is pure. Parsing is strict against the layouts each site is
// known to publish; a mismatch is an error that the caller turns into a
// dropped item.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/bizevents/internal/event"
)

// Layouts published by the sites. Day and hour use the non-padded forms so
// that both "9" and "09" parse.
const (
	LayoutLongDate    = "January 2, 2006"
	LayoutShortDate   = "Jan 2, 2006"
	LayoutWeekdayDate = "Monday, January 2, 2006"
	LayoutISODate     = "2006-01-02"
	LayoutClock       = "3:04 PM"
	LayoutClockTight  = "3:04PM"
)

// Default clocks used when a site publishes a date without times.
const (
	DefaultStartClock = "12:00 AM"
	DefaultEndClock   = "11:59 PM"
)

// Eastern is the zone UTC sources are converted into.
var Eastern = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading %s: %v", name, err))
	}
	return loc
}

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	markerRepl = strings.NewReplacer(
		"\u00a0", " ",
		"\u202f", " ",
		"\u2009", " ",
		"\u200e", "",
		"\u200f", "",
		"\u200b", "",
		"\ufeff", "",
	)
)

// Clean strips directional marks and non-breaking spaces, collapses runs of
// whitespace and trims the result.
func Clean(s string) string {
	s = markerRepl.Replace(s)
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Parse parses s against each layout in turn, returning the first success as a
// UTC wall clock. Meridiem markers are accepted in either case.
func Parse(s string, layouts ...string) (time.Time, error) {
	s = Clean(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	upper := strings.ToUpper(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse(layout, upper); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing %q: no layout matched", s)
}

// ParseClock reads a 12-hour clock such as "5:30 pm", "05:30PM" or "9 AM".
// Returns the hour and minute.
func ParseClock(s string) (int, int, error) {
	c := strings.ToUpper(strings.ReplaceAll(Clean(s), " ", ""))
	c = strings.ReplaceAll(c, ".", "")
	for _, layout := range []string{"3:04PM", "3PM", "15:04"} {
		if t, err := time.Parse(layout, c); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("parsing clock %q", s)
}

// At sets the clock of date to the given clock string.
func At(date time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, time.UTC), nil
}

// Compose combines a date with start and end clocks into naive timestamps.
// An empty clock falls back to 12:00 AM for the start and 11:59 PM for the end.
func Compose(date time.Time, startClock, endClock string) (event.Timestamp, event.Timestamp, error) {
	if strings.TrimSpace(startClock) == "" {
		startClock = DefaultStartClock
	}
	if strings.TrimSpace(endClock) == "" {
		endClock = DefaultEndClock
	}
	start, err := At(date, startClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("start: %w", err)
	}
	end, err := At(date, endClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("end: %w", err)
	}
	return event.Naive(start), event.Naive(end), nil
}

// ComposeRange parses a date with one of the layouts and a "start - end" clock
// range, applying the default clocks for missing halves.
func ComposeRange(dateText, rangeText string, layouts ...string) (event.Timestamp, event.Timestamp, error) {
	date, err := Parse(dateText, layouts...)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	startClock, endClock := SplitRange(rangeText)
	return Compose(date, startClock, endClock)
}

// SplitRange splits "a - b" (or any of seps) into its two trimmed halves.
// With no separator found, the whole text is returned as the first half.
func SplitRange(s string, seps ...string) (string, string) {
	if len(seps) == 0 {
		seps = []string{" - ", " – ", " — ", "-", "–", "—", " to "}
	}
	s = Clean(s)
	for _, sep := range seps {
		if i := strings.Index(s, sep); i >= 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	return s, ""
}

// Meridiem returns "AM" or "PM" when the clock ends with one, else "".
func Meridiem(clock string) string {
	c := strings.ToUpper(strings.TrimSpace(clock))
	switch {
	case strings.HasSuffix(c, "AM"):
		return "AM"
	case strings.HasSuffix(c, "PM"):
		return "PM"
	}
	return ""
}
