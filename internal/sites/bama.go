package sites

import (
	"context"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

type bamaSelectors struct {
	AddressFilter []string `json:"Address_filter"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "bama",
		Require: keys(),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: bamaDetail,
	})
}

// bamaDetail reads the event script and skips venues whose address starts
// with a filtered prefix. The venue address is kept on the candidate.
func bamaDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel bamaSelectors
	if r.Cfg.Has("detail_selectors") {
		if err := r.Cfg.DetailSelectors(&sel); err != nil {
			return it, err
		}
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	obj, start, end, err := scriptEvent(doc)
	if obj == nil {
		return it, err
	}

	address := obj["location"]
	lower := strings.ToLower(address)
	for _, f := range sel.AddressFilter {
		if strings.HasPrefix(lower, strings.ToLower(f)) {
			return it, scraper.Skip("address %s", address)
		}
	}
	if err != nil {
		return it, err
	}
	it.Start, it.End, it.Address = start, end, address
	return it, nil
}
