package sites

import (
	"context"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "cai_cf",
		Require: keys(),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: caiCFDetail,
	})
}

// caiCFDetail skips events in a filtered category before reading the JSON-LD
// event.
func caiCFDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel categorySelectors
	if r.Cfg.Has("detail_selectors") {
		if err := r.Cfg.DetailSelectors(&sel); err != nil {
			return it, err
		}
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}

	if hit := sel.filtered(doc); hit != "" {
		return it, scraper.Skip("category %s", hit)
	}
	it.Start, it.End, err = jsonLDRange(doc, false)
	return it, err
}
