package sites

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

const (
	samaCommunityPanel = "#MainCopy_ctl09_CommunityPanel"
	samaCommunity      = "SAMA Events"
)

// "Apr 9, 2025 from 5:30 PM to 7:30 PM"
var samaRange = regexp.MustCompile(`(\w{3} \d{1,2}, \d{4}) from ([\d: ]+[APMapm]{2}) to ([\d: ]+[APMapm]{2})`)

type samaSelectors struct {
	DateTime positionedSelector `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "sama",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail:    samaDetail,
		JitterMin: time.Second,
		JitterMax: 2 * time.Second,
	})
}

// samaDetail keeps only events posted to the SAMA community of the shared
// association calendar.
func samaDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel samaSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}

	panel := doc.Find(samaCommunityPanel).First()
	if panel.Length() == 0 || !strings.Contains(panel.Text(), samaCommunity) {
		return it, scraper.Skip("not a %s event", samaCommunity)
	}

	elems := doc.Find(sel.DateTime.Selector)
	if elems.Length() <= sel.DateTime.Position {
		return it, fmt.Errorf("no datetime element at position %d", sel.DateTime.Position)
	}
	it.Start, it.End, err = samaParse(scraper.TextSep(elems.Eq(sel.DateTime.Position), " "))
	return it, err
}

func samaParse(text string) (event.Timestamp, event.Timestamp, error) {
	m := samaRange.FindStringSubmatch(text)
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no date range in %q", text)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutShortDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	return normalize.Compose(day, m[2], m[3])
}
