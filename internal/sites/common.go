package sites

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/extract"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

var listKeys = []string{"url", "base_url", "event_list_selector", "event_link_selector", "event_title_selector"}

// keys returns the standard listing keys plus extra.
func keys(extra ...string) []string {
	out := make([]string, 0, len(listKeys)+len(extra))
	out = append(out, listKeys...)
	return append(out, extra...)
}

func itemFields(it scraper.Item) logger.Fields {
	return logger.Fields{"title": it.Title, "link": it.Link}
}

// isoRange reads both timestamps as published.
func isoRange(start, end string) (event.Timestamp, event.Timestamp, error) {
	s, err := normalize.ParseISO(start)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("start: %w", err)
	}
	e, err := normalize.ParseISO(end)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("end: %w", err)
	}
	return s, e, nil
}

// easternRange reads both timestamps and converts them to America/New_York.
func easternRange(start, end string) (event.Timestamp, event.Timestamp, error) {
	s, err := normalize.ISOToEastern(start)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("start: %w", err)
	}
	e, err := normalize.ISOToEastern(end)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("end: %w", err)
	}
	return s, e, nil
}

// eventArray returns the objects of the first JSON-LD block that is an array
// whose members all satisfy keep.
func eventArray(blocks []any, keep func(map[string]any) bool) []map[string]any {
	for _, b := range blocks {
		arr, ok := b.([]any)
		if !ok {
			continue
		}
		objs := extract.Objects(arr)
		if len(objs) != len(arr) {
			continue
		}
		all := true
		for _, o := range objs {
			if !keep(o) {
				all = false
				break
			}
		}
		if all {
			return objs
		}
	}
	return nil
}

// scriptRange reads the start and end of the "const event" object on a
// detail page, converted to Eastern time.
func scriptRange(obj map[string]string) (event.Timestamp, event.Timestamp, error) {
	if obj["start"] == "" || obj["end"] == "" {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no start/end in event script")
	}
	return easternRange(obj["start"], obj["end"])
}

// longDateAt reads "April 9, 2025 at 9:30 AM".
func longDateAt(s string) (time.Time, error) {
	date, clock, ok := strings.Cut(s, " at ")
	if !ok {
		return time.Time{}, fmt.Errorf("no clock in %q", s)
	}
	day, err := normalize.Parse(date, normalize.LayoutLongDate)
	if err != nil {
		return time.Time{}, err
	}
	return normalize.At(day, clock)
}

// scriptDetail completes an item from the "const event" object on its detail
// page. Several sites share this calendar platform.
func scriptDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	_, it.Start, it.End, err = scriptEvent(doc)
	return it, err
}

// scriptEvent returns the "const event" object of doc with its start and end
// converted to Eastern time.
func scriptEvent(doc *goquery.Document) (map[string]string, event.Timestamp, event.Timestamp, error) {
	obj, ok := extract.ScriptObject(doc, extract.EventMarker)
	if !ok {
		return nil, event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no event script")
	}
	start, end, err := scriptRange(obj)
	return obj, start, end, err
}

// linkList lists blocks whose link text is the title.
func linkList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: r.Cfg.EventLinkSelector}
	return r.ListPage(ctx, opts, nil)
}

// dateTimeSelectors is the detail_selectors shape of sites that publish the
// date and a clock range in separate elements.
type dateTimeSelectors struct {
	DateTime struct {
		DateSelector string `json:"date_selector"`
		TimeSelector string `json:"time_selector"`
	} `json:"DateTime"`
}

// titleLinkList lists blocks whose title element is also the link.
func titleLinkList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: r.Cfg.EventTitleSelector}
	return r.ListPage(ctx, opts, nil)
}

// jsonLDDetail completes an item from the first JSON-LD Event on its detail
// page, keeping the timestamps as published.
func jsonLDDetail(sanitize bool) func(context.Context, *scraper.Run, scraper.Item) (scraper.Item, error) {
	return func(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
		doc, err := r.HTTP.Document(ctx, it.Link)
		if err != nil {
			return it, err
		}
		it.Start, it.End, err = jsonLDRange(doc, sanitize)
		return it, err
	}
}

func jsonLDRange(doc *goquery.Document, sanitize bool) (event.Timestamp, event.Timestamp, error) {
	obj, ok := extract.FirstEvent(extract.JSONLD(doc.Selection, sanitize))
	if !ok {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no JSON-LD event")
	}
	return isoRange(extract.String(obj, "startDate"), extract.String(obj, "endDate"))
}

// dayRange reads "March 26, 2025 9:00 AM - 12:00 PM": the first three words
// are the date and the rest an optional clock range.
func dayRange(text string) (event.Timestamp, event.Timestamp, error) {
	date := normalize.FirstWords(text, 3)
	day, err := normalize.Parse(date, normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	rest := strings.TrimSpace(strings.Replace(text, date, "", 1))
	var startClock, endClock string
	if strings.Contains(rest, "-") {
		startClock, endClock = normalize.SplitRange(rest, "-")
	}
	return normalize.Compose(day, startClock, endClock)
}

// containsFold reports whether list holds v, ignoring case.
func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// categorySelectors is the detail_selectors shape of sites that tag events
// with category archive links.
type categorySelectors struct {
	Category       string   `json:"Event Category"`
	CategoryFilter []string `json:"Event Category Filter"`
}

// filtered returns the first category slug on doc that is listed in the
// filter, or "". Slugs are the last path segment of each link.
func (c categorySelectors) filtered(doc *goquery.Document) string {
	if c.Category == "" {
		return ""
	}
	var hit string
	doc.Find(c.Category).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		parts := strings.Split(strings.Trim(scraper.Attr(a, "href"), "/"), "/")
		if slug := strings.ToLower(parts[len(parts)-1]); containsFold(c.CategoryFilter, slug) {
			hit = slug
			return false
		}
		return true
	})
	return hit
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
