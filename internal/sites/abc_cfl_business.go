package sites

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "04-09-2025 @ 5:30 PM"
const abcCFLLayout = "1-2-2006 3:04 PM"

type abcCFLSelectors struct {
	DateTime struct {
		StartDateSelector string `json:"start_date_selector"`
		EndDateSelector   string `json:"end_date_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "abc_cfl_business",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: abcCFLDetail,
	})
}

// abcCFLDetail reads separate start and end stamps. Either one alone stands in
// for both.
func abcCFLDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel abcCFLSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}

	start, startErr := abcCFLStamp(doc, sel.DateTime.StartDateSelector)
	end, endErr := abcCFLStamp(doc, sel.DateTime.EndDateSelector)
	switch {
	case startErr != nil && endErr != nil:
		return it, fmt.Errorf("no datetime: %w", startErr)
	case startErr != nil:
		start = end
	case endErr != nil:
		end = start
	}
	it.Start, it.End = event.Naive(start), event.Naive(end)
	return it, nil
}

func abcCFLStamp(doc *goquery.Document, selector string) (time.Time, error) {
	if selector == "" {
		return time.Time{}, fmt.Errorf("no selector")
	}
	elem := doc.Find(selector).First()
	if elem.Length() == 0 {
		return time.Time{}, fmt.Errorf("no element for %q", selector)
	}
	text := scraper.Text(elem)
	date, clock, ok := strings.Cut(text, "@")
	if !ok {
		return time.Time{}, fmt.Errorf("no '@' in %q", text)
	}
	return normalize.Parse(strings.TrimSpace(date)+" "+strings.TrimSpace(clock), abcCFLLayout)
}
