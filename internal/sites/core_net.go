package sites

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "Apr 9, 05:00 PM - 08:00 PM (ET)". The listing omits the year.
var coreNetTime = regexp.MustCompile(`([A-Za-z]+ \d{1,2}),\s*(\d{1,2}:\d{2}\s*[APMapm]{2})\s*-\s*(\d{1,2}:\d{2}\s*[APMapm]{2})`)

func init() {
	register(&scraper.Pipeline{
		Site:    "core_net",
		Require: []string{"url", "base_url", "event_list_selector", "event_title_selector", "event_time_selector"},
		List:    coreNetList,
	})
}

func coreNetList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	opts := scraper.ListOptions{
		Block:     r.Cfg.EventListSelector,
		Link:      r.Cfg.EventTitleSelector,
		TitleAttr: "title",
	}
	year := strconv.Itoa(r.Now().Year())

	return r.ListPage(ctx, opts, func(block *goquery.Selection, it *scraper.Item) bool {
		timeTag := block.Find(r.Cfg.EventTimeSelector).First()
		if timeTag.Length() == 0 {
			return false
		}
		m := coreNetTime.FindStringSubmatch(scraper.Text(timeTag))
		if m == nil {
			return false
		}

		var err error
		it.Start, it.End, err = coreNetRange(m[1]+" "+year, m[2], m[3])
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		return true
	})
}

func coreNetRange(date, startClock, endClock string) (event.Timestamp, event.Timestamp, error) {
	day, err := normalize.Parse(date, "Jan 2 2006")
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("date: %w", err)
	}
	return normalize.Compose(day, startClock, endClock)
}
