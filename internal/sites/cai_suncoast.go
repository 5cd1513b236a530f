package sites

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "From April 9, 2025, 5:30 pm to April 9, 2025, 7:30 pm". The end date is
// optional and defaults to the start date.
var caiSuncoastRange = regexp.MustCompile(`(?i)From ([A-Za-z]+ \d{1,2}, \d{4}),\s*(\d{1,2}:\d{2}\s*[ap]m) to ([A-Za-z]+ \d{1,2}, \d{4})?,?\s*(\d{1,2}:\d{2}\s*[ap]m)`)

func init() {
	register(&scraper.Pipeline{
		Site:    "cai_suncoast",
		Require: keys(),
		List:    caiSuncoastList,
	})
}

func caiSuncoastList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	return r.ListPage(ctx, r.ListFromConfig(), func(block *goquery.Selection, it *scraper.Item) bool {
		var err error
		it.Start, it.End, err = caiSuncoastParse(strings.Join(scraper.Strings(block), " "))
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		return true
	})
}

func caiSuncoastParse(text string) (event.Timestamp, event.Timestamp, error) {
	m := caiSuncoastRange.FindStringSubmatch(text)
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no date range in %q", text)
	}
	endDate := m[3]
	if endDate == "" {
		endDate = m[1]
	}

	startDay, err := normalize.Parse(m[1], normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	endDay, err := normalize.Parse(endDate, normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	start, err := normalize.At(startDay, m[2])
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	end, err := normalize.At(endDay, m[4])
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	return event.Naive(start), event.Naive(end), nil
}
