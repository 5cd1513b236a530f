package sites

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

var (
	// title="Starts April 9, 2025 at 9:30 AM"
	coaaStarts = regexp.MustCompile(`Starts (.+?) at (.+)`)
	coaaRange  = regexp.MustCompile(`(\d{1,2}:\d{2}\s*[APMapm]{2})\s*-\s*(\d{1,2}:\d{2}\s*[APMapm]{2})`)
)

func init() {
	register(&scraper.Pipeline{
		Site:    "coaa",
		Require: keys("event_time_selector", "date_attr_selector"),
		List:    coaaList,
	})
}

func coaaList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	return r.ListPage(ctx, r.ListFromConfig(), func(block *goquery.Selection, it *scraper.Item) bool {
		stub := block.Find(r.Cfg.DateAttrSelector).First()
		if stub.Length() == 0 {
			return false
		}
		var parts []string
		block.Find(r.Cfg.EventTimeSelector).Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, scraper.Text(s))
		})

		var err error
		it.Start, it.End, err = coaaParse(scraper.Attr(stub, "title"), strings.Join(parts, " "))
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		return true
	})
}

// coaaParse reads the start from the stub's title attribute. A visible
// "a - b" range overrides the clocks; without one the event ends when it starts.
func coaaParse(startsAttr, timeText string) (event.Timestamp, event.Timestamp, error) {
	m := coaaStarts.FindStringSubmatch(startsAttr)
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no start in %q", startsAttr)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	start, err := normalize.At(day, m[2])
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}

	rng := coaaRange.FindStringSubmatch(timeText)
	if rng == nil {
		return event.Naive(start), event.Naive(start), nil
	}
	return normalize.Compose(day, rng[1], rng[2])
}
