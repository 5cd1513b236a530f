package sites

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "April 16, 2025 9:00 AM - 12:00 PM"
var iremRange = regexp.MustCompile(`^([A-Za-z]+\s+\d{1,2},\s+\d{4})\s+(\d{1,2}:\d{2}\s*[APMapm]{2})\s*-\s*(\d{1,2}:\d{2}\s*[APMapm]{2})`)

type positionedSelector struct {
	Selector string `json:"selector"`
	Position int    `json:"position"`
}

type iremSelectors struct {
	DateTime struct {
		DateTime positionedSelector `json:"datetime_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "irem_tb",
		Require: []string{"url", "base_url", "event_list_selector", "event_link_selector", "detail_selectors"},
		List:    linkList,
		Detail:  iremDetail,
	})
}

func iremDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel iremSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	pos := sel.DateTime.DateTime
	elems := doc.Find(pos.Selector)
	if elems.Length() <= pos.Position {
		return it, fmt.Errorf("no datetime element at position %d", pos.Position)
	}

	text := normalize.StripBoilerplate(normalize.SplitGluedYear(scraper.Text(elems.Eq(pos.Position))))
	m := iremRange.FindStringSubmatch(text)
	if m == nil {
		return it, fmt.Errorf("no date range in %q", text)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutLongDate)
	if err != nil {
		return it, err
	}
	it.Start, it.End, err = normalize.Compose(day, m[2], m[3])
	return it, err
}
