package sites

import (
	"context"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// ifma_orl lists events in a table; the title link sits in the first data cell.
const ifmaOrlTitleLink = "td.data_row div b a"

func init() {
	register(&scraper.Pipeline{
		Site:    "ifma_orl",
		Require: []string{"url", "base_url", "event_list_selector"},
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: ifmaOrlTitleLink}
			return r.ListPage(ctx, opts, nil)
		},
		Detail: jsonLDDetail(true),
	})
}
