package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "boma_orl_events",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: bomaOrlDetail,
	})
}

// bomaOrlDetail reads "Wednesday, April 9, 2025" and "5:30 PM - 7:30 PM (EDT)".
func bomaOrlDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel dateTimeSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}

	dateEl := doc.Find(sel.DateTime.DateSelector).First()
	if dateEl.Length() == 0 {
		return it, fmt.Errorf("no date element")
	}
	day, err := normalize.Parse(scraper.Text(dateEl), normalize.LayoutWeekdayDate)
	if err != nil {
		return it, err
	}

	var startClock, endClock string
	if timeEl := doc.Find(sel.DateTime.TimeSelector).First(); timeEl.Length() > 0 {
		rng, _, _ := strings.Cut(scraper.Text(timeEl), "(")
		if strings.Contains(rng, "-") {
			startClock, endClock = normalize.SplitRange(rng, "-")
		}
	}
	it.Start, it.End, err = normalize.Compose(day, startClock, endClock)
	return it, err
}
