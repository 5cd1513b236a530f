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

const swfaaTimeStub = "span.c-event-date-stub__time"

type swfaaSelectors struct {
	DateTime struct {
		StartSelector  string `json:"start_selector"`
		StartAttribute string `json:"start_attribute"`
		EndSelector    string `json:"end_selector"`
		EndAttribute   string `json:"end_attribute"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "swfaa_affiliate_event",
		Require: []string{"url", "base_url", "event_list_selector", "event_link_selector", "detail_selectors"},
		List:    swfaaList,
	})
}

func swfaaList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	var sel swfaaSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return nil, err
	}
	opts := scraper.ListOptions{Block: r.Cfg.EventListSelector, Link: r.Cfg.EventLinkSelector}

	return r.ListPage(ctx, opts, func(block *goquery.Selection, it *scraper.Item) bool {
		start, err := swfaaStamp(block, sel.DateTime.StartSelector, sel.DateTime.StartAttribute, "Starts ")
		if err != nil {
			r.Drop("event", itemFields(*it), err)
			return false
		}
		it.Start, it.End = event.Naive(start), event.Naive(swfaaEnd(block, sel, start))
		return true
	})
}

// swfaaEnd prefers an explicit end attribute, then the end half of the
// visible time range. Anything unreadable ends the event at its start.
func swfaaEnd(block *goquery.Selection, sel swfaaSelectors, start time.Time) time.Time {
	if sel.DateTime.EndSelector != "" && block.Find(sel.DateTime.EndSelector).Length() > 0 {
		end, err := swfaaStamp(block, sel.DateTime.EndSelector, sel.DateTime.EndAttribute, "Ends ")
		if err != nil {
			return start
		}
		return end
	}

	stub := block.Find(swfaaTimeStub).First()
	if stub.Length() == 0 {
		return start
	}
	text := scraper.Text(stub)
	if !strings.Contains(text, "-") {
		return start
	}
	_, endClock := normalize.SplitRange(text)
	end, err := normalize.At(start, endClock)
	if err != nil {
		return start
	}
	return end
}

func swfaaStamp(block *goquery.Selection, selector, attr, label string) (time.Time, error) {
	node := block.Find(selector).First()
	if node.Length() == 0 {
		return time.Time{}, fmt.Errorf("no element for %q", selector)
	}
	return longDateAt(strings.TrimPrefix(scraper.Attr(node, attr), label))
}
