// Package calendar exports stored events as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

const (
	ProductID = "-//bizevents//bizevents//EN"
	uidDomain = "bizevents"
	// floatingLayout is a DATE-TIME with no zone, read as local time by clients.
	floatingLayout = "20060102T150405"
)

// UID returns the calendar UID of a stored event.
func UID(id int64) string {
	return fmt.Sprintf("event-%d@%s", id, uidDomain)
}

// Calendar builds a VCALENDAR with one VEVENT per event that has a start.
func Calendar(events []storage.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	for i := range events {
		if events[i].Start.IsZero() {
			continue
		}
		cal.Children = append(cal.Children, vevent(&events[i], now))
	}
	return cal
}

// Write encodes the events as an .ics document.
func Write(w io.Writer, events []storage.Event, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(Calendar(events, now)); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func vevent(e *storage.Event, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, UID(e.ID))
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	end := e.End
	if end.IsZero() {
		end = e.Start
	}
	setTimestamp(ve.Props, ical.PropDateTimeStart, e.Start)
	setTimestamp(ve.Props, ical.PropDateTimeEnd, end)

	ve.Props.SetText(ical.PropSummary, e.Title)
	if desc := description(e); desc != "" {
		ve.Props.SetText(ical.PropDescription, desc)
	}
	if e.Link != "" {
		ve.Props.SetText(ical.PropURL, e.Link)
	}
	if e.Industry != "" {
		ve.Props.SetText(ical.PropCategories, e.Industry)
	}
	if !e.UpdatedAt.IsZero() {
		ve.Props.SetDateTime(ical.PropLastModified, e.UpdatedAt.Time.UTC())
	}
	ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	ve.Props.SetText(ical.PropTransparency, "OPAQUE")
	return ve
}

// setTimestamp writes zone-aware values in UTC and naive ones as floating
// local times.
func setTimestamp(props ical.Props, name string, ts event.Timestamp) {
	if ts.Zoned {
		props.SetDateTime(name, ts.Time.UTC())
		return
	}
	p := ical.NewProp(name)
	p.Value = ts.Time.Format(floatingLayout)
	props.Set(p)
}

func description(e *storage.Event) string {
	var lines []string
	for _, f := range []struct{ label, value string }{
		{"Organizer", e.Organizer},
		{"Industry", e.Industry},
		{"Market", e.Market},
		{"Note", e.Note},
	} {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}
	return strings.Join(lines, "\n")
}
