package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// The calendar's tooltip span carries the untruncated title as HTML in its
// title attribute.
const (
	caiSWFLTooltip = "span[title]"
	caiSWFLTitle   = "div.jevtt_title"
)

type caiSWFLSelectors struct {
	DateTime struct {
		DateSelector string `json:"date_selector"`
		TimeSelector []struct {
			Selector string `json:"selector"`
		} `json:"time_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "cai_swfl",
		Require: []string{"url", "base_url", "event_list_selector", "event_link_selector", "detail_selectors"},
		List:    caiSWFLList,
		Detail:  caiSWFLDetail,
	})
}

func caiSWFLList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: r.Cfg.EventLinkSelector}
	return r.ListPage(ctx, opts, func(block *goquery.Selection, it *scraper.Item) bool {
		if full := caiSWFLFullTitle(block); full != "" {
			it.Title = full
		}
		return true
	})
}

func caiSWFLFullTitle(block *goquery.Selection) string {
	tip := block.Find(caiSWFLTooltip).First()
	if tip.Length() == 0 {
		return ""
	}
	inner, err := goquery.NewDocumentFromReader(strings.NewReader(scraper.Attr(tip, "title")))
	if err != nil {
		return ""
	}
	return scraper.Text(inner.Find(caiSWFLTitle).First())
}

func caiSWFLDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel caiSWFLSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	if len(sel.DateTime.TimeSelector) != 2 {
		return it, fmt.Errorf("time_selector must list a start and an end selector")
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

	// "10:00 AM EDT": the zone is dropped by keeping the first two words.
	clock := func(selector string) string {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			return ""
		}
		return normalize.FirstWords(scraper.Text(el), 2)
	}
	it.Start, it.End, err = normalize.Compose(day,
		clock(sel.DateTime.TimeSelector[0].Selector),
		clock(sel.DateTime.TimeSelector[1].Selector))
	return it, err
}
