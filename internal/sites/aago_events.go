package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// Fallbacks for the older detail page template.
const (
	aagoFallbackDate = "div.o-details-block__details-info strong"
	aagoFallbackTime = ".o-details-block__details-copy"
)

type aagoSelectors struct {
	DateTime struct {
		StartDate string `json:"start_date_selector"`
		EndDate   string `json:"end_date_selector"`
		Time      string `json:"time_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "aago_events",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: aagoDetail,
	})
}

func aagoDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel aagoSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	it.Start, it.End, err = aagoParse(doc, sel)
	return it, err
}

// aagoParse reads the start date from the last span of the start element, an
// optional "to <date>" end date and a "9:00 AM - 5:00 PM (EDT)" clock range.
func aagoParse(doc *goquery.Document, sel aagoSelectors) (event.Timestamp, event.Timestamp, error) {
	var startText string
	if el := selectFirst(doc, sel.DateTime.StartDate); el.Length() > 0 {
		startText = scraper.Text(el.Find("span").Last())
	} else if el := doc.Find(aagoFallbackDate).First(); el.Length() > 0 {
		startText = scraper.Text(el)
	}
	if startText == "" {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no start date")
	}
	startDay, err := normalize.Parse(startText, normalize.LayoutWeekdayDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}

	endDay := startDay
	if el := selectFirst(doc, sel.DateTime.EndDate); el.Length() > 0 {
		if d, err := normalize.Parse(normalize.TrimLabel(scraper.Text(el), "to "), normalize.LayoutWeekdayDate); err == nil {
			endDay = d
		}
	}

	var rng string
	if el := selectFirst(doc, sel.DateTime.Time); el.Length() > 0 {
		rng = scraper.Text(el)
	} else if el := doc.Find(aagoFallbackTime).First(); el.Length() > 0 {
		rng = scraper.Text(el)
	}
	rng, _, _ = strings.Cut(rng, "(")

	startClock, endClock := normalize.DefaultStartClock, normalize.DefaultEndClock
	if strings.Contains(rng, "-") {
		startClock, endClock = normalize.SplitRange(rng, "-")
	}
	start, err := normalize.At(startDay, startClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	end, err := normalize.At(endDay, endClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	return event.Naive(start), event.Naive(end), nil
}

// selectFirst returns the first match of selector, or an empty selection when
// the selector is unset.
func selectFirst(doc *goquery.Document, selector string) *goquery.Selection {
	if selector == "" {
		return doc.Selection.Slice(0, 0)
	}
	return doc.Find(selector).First()
}
