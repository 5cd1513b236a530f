package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

const (
	smpsDateSelector = "div.col-md-4:nth-of-type(1) div.col-md-11"
	smpsTimeSelector = "div.col-md-4:nth-of-type(2) div.col-md-11"
	smpsLinkSelector = "a[href*='meetinginfo.php']"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "smps_cf",
		Require: []string{"url", "base_url", "event_list_selector"},
		List:    smpsList,
	})
}

// smpsList reads blocks that carry the date and a "5:30 PM to 7:30 PM" range.
// Blocks without a meeting link point at the listing page itself.
func smpsList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	doc, err := r.HTTP.Document(ctx, r.Cfg.URL)
	if err != nil {
		return nil, err
	}

	var items []scraper.Item
	doc.Find(r.Cfg.EventListSelector).Each(func(_ int, block *goquery.Selection) {
		it := scraper.Item{
			Title: scraper.Text(block.Find("h3").First()),
			Link:  r.Cfg.URL,
		}
		if link := block.Find(smpsLinkSelector).First(); link.Length() > 0 {
			it.Link = scraper.Resolve(r.Cfg.BaseURL, scraper.Attr(link, "href"))
		}
		if r.Cfg.FilteredTitle(it.Title) {
			r.Filter("by title", logger.Fields{"title": it.Title})
			return
		}

		it.Start, it.End, err = smpsRange(
			scraper.Text(block.Find(smpsDateSelector).First()),
			scraper.Text(block.Find(smpsTimeSelector).First()),
		)
		if err != nil {
			r.Drop("event", itemFields(it), err)
			return
		}
		items = append(items, it)
	})
	return items, nil
}

func smpsRange(dateText, timeText string) (event.Timestamp, event.Timestamp, error) {
	day, err := normalize.Parse(dateText, normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	if !strings.Contains(timeText, "to") {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no time range in %q", timeText)
	}
	startClock, endClock := normalize.SplitRange(timeText, "to")
	return normalize.Compose(day, startClock, endClock)
}
