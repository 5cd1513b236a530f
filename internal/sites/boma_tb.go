package sites

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

type bomaTBSelectors struct {
	DateTime struct {
		Date positionedSelector `json:"date_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "boma_tb",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail:    bomaTBDetail,
		JitterMin: time.Second,
		JitterMax: 5 * time.Second,
	})
}

func bomaTBDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel bomaTBSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	pos := sel.DateTime.Date
	elems := doc.Find(pos.Selector)
	if elems.Length() <= pos.Position {
		return it, fmt.Errorf("no date element at position %d", pos.Position)
	}

	text := normalize.SplitGluedYear(normalize.StripBoilerplate(scraper.Text(elems.Eq(pos.Position))))
	it.Start, it.End, err = dayRange(text)
	return it, err
}
