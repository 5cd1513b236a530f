package sites

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

var naiopOrlClock = regexp.MustCompile(`\d{1,2}:\d{2}\s*[APMapm]{2}`)

func init() {
	register(&scraper.Pipeline{
		Site:    "naiop_orl",
		Require: []string{"url", "base_url", "event_list_selector", "event_link_selector", "detail_selectors"},
		List:    naiopOrlList,
	})
}

// naiopOrlList reads date and clock range from each listing block and keeps
// events starting today or later.
func naiopOrlList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	var sel dateTimeSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return nil, err
	}
	now := r.Now().In(normalize.Eastern)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: r.Cfg.EventLinkSelector}
	return r.ListPage(ctx, opts, func(block *goquery.Selection, it *scraper.Item) bool {
		dateEl := block.Find(sel.DateTime.DateSelector).First()
		timeEl := block.Find(sel.DateTime.TimeSelector).First()
		if dateEl.Length() == 0 || timeEl.Length() == 0 {
			return false
		}

		day, err := normalize.Parse(scraper.Text(dateEl), normalize.LayoutLongDate)
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		if day.Before(today) {
			r.Filter("past event", logger.Fields{"title": it.Title, "date": day.Format(normalize.LayoutISODate)})
			return false
		}

		clocks := naiopOrlClock.FindAllString(scraper.Text(timeEl), -1)
		if len(clocks) != 2 {
			r.Drop("event", itemFields(*it), fmt.Errorf("invalid time range %q", scraper.Text(timeEl)))
			return false
		}
		it.Start, it.End, err = normalize.Compose(day, clocks[0], clocks[1])
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		return true
	})
}
