package sites

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "ccc_orl",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: cccDetail,
	})
}

// cccDetail reads "April 9, 2025" and "5:30 PM - 7:30 PM" from the detail
// page. A time that is not a range leaves the whole day.
func cccDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel dateTimeSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	dateSel := doc.Find(sel.DateTime.DateSelector).First()
	timeSel := doc.Find(sel.DateTime.TimeSelector).First()
	if dateSel.Length() == 0 || timeSel.Length() == 0 {
		return it, fmt.Errorf("missing date or time")
	}

	day, err := normalize.Parse(scraper.Text(dateSel), normalize.LayoutLongDate)
	if err != nil {
		return it, err
	}
	startClock, endClock := normalize.SplitRange(scraper.Text(timeSel), "-")
	if endClock == "" {
		startClock = ""
	}
	it.Start, it.End, err = normalize.Compose(day, startClock, endClock)
	return it, err
}
