package sites

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// fgcar publishes start and end as meta content attributes on the listing.
const fgcarLayout = "1/2/2006 3:04:05 PM"

func init() {
	register(&scraper.Pipeline{
		Site:    "fgcar",
		Require: []string{"url", "base_url", "event_list_selector", "event_title_selector", "start_meta_selector", "end_meta_selector"},
		List:    fgcarList,
	})
}

func fgcarList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	opts := scraper.ListOptions{
		Block: r.Cfg.EventListSelector,
		Link:  r.Cfg.EventTitleSelector,
	}
	return r.ListPage(ctx, opts, func(block *goquery.Selection, it *scraper.Item) bool {
		startMeta := block.Find(r.Cfg.StartMetaSelector).First()
		endMeta := block.Find(r.Cfg.EndMetaSelector).First()
		if startMeta.Length() == 0 || endMeta.Length() == 0 {
			return false
		}

		start, err := normalize.Parse(scraper.Attr(startMeta, "content"), fgcarLayout)
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		end, err := normalize.Parse(scraper.Attr(endMeta, "content"), fgcarLayout)
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		it.Start, it.End = event.Naive(start), event.Naive(end)
		return true
	})
}
