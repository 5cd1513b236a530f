package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/storage"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate      SortOrder = "date"
	SortByOrganizer SortOrder = "organizer"
	SortByTitle     SortOrder = "title"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case SortByDate, SortByOrganizer, SortByTitle:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be 'date', 'organizer' or 'title')", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []storage.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(&events[i], &events[j])
		})
	case SortByOrganizer:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Organizer != events[j].Organizer {
				return events[i].Organizer < events[j].Organizer
			}
			return compareByDate(&events[i], &events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(&events[i], &events[j])
		})
	}
}

// compareByDate reports whether i starts before j. Events without a start
// come last, ordered by title.
func compareByDate(i, j *storage.Event) bool {
	if !i.Start.IsZero() && !j.Start.IsZero() {
		if i.Start.Before(j.Start) || j.Start.Before(i.Start) {
			return i.Start.Before(j.Start)
		}
	} else if !i.Start.IsZero() {
		return true
	} else if !j.Start.IsZero() {
		return false
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
