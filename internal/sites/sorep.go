package sites

import (
	"context"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "sorep",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: sorepDetail,
	})
}

func sorepDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel categorySelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	if hit := sel.filtered(doc); hit != "" {
		return it, scraper.Skip("category %s", hit)
	}
	_, it.Start, it.End, err = scriptEvent(doc)
	return it, err
}
