package sites

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "Tuesday, April 1, 2025 (9:00 AM - 10:30 AM)" once zone annotations are gone.
var cfhlaDate = regexp.MustCompile(`^([A-Za-z]+,\s+[A-Za-z]+\s+\d{1,2},\s+\d{4})\s*\(([^)]+)\)`)

func init() {
	register(&scraper.Pipeline{
		Site:    "cfhla",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: cfhlaDetail,
	})
}

func cfhlaDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel dateTimeSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	span := doc.Find(sel.DateTime.DateSelector).First()
	if span.Length() == 0 {
		return it, fmt.Errorf("no date/time element")
	}
	it.Start, it.End, err = cfhlaParse(scraper.Text(span))
	return it, err
}

// cfhlaParse reads the weekday date and parenthesized range. Without a range
// both ends sit at midnight.
func cfhlaParse(text string) (event.Timestamp, event.Timestamp, error) {
	m := cfhlaDate.FindStringSubmatch(normalize.StripZoneParens(text))
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("unexpected format %q", text)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutWeekdayDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	startClock, endClock := normalize.DefaultStartClock, normalize.DefaultStartClock
	if strings.Contains(m[2], " - ") {
		startClock, endClock = normalize.SplitRange(m[2], " - ")
	}
	return normalize.Compose(day, startClock, endClock)
}
