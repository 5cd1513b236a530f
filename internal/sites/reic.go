package sites

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// "Wednesday, April 9, 2025"
var reicDate = regexp.MustCompile(`[A-Za-z]+day, ([A-Za-z]+ \d{1,2}, \d{4})`)

type reicSelectors struct {
	DateTime struct {
		StartDate string `json:"start_date_selector"`
		StartTime string `json:"start_time_selector"`
		EndTime   string `json:"end_time_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "reic",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail:    reicDetail,
		JitterMin: time.Second,
		JitterMax: 4 * time.Second,
	})
}

func reicDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel reicSelectors
	sel.DateTime.StartDate = ".event-start-date"
	sel.DateTime.StartTime = ".event-start-time"
	sel.DateTime.EndTime = ".event-stop-time"
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}

	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	dateEl := doc.Find(sel.DateTime.StartDate).First()
	startEl := doc.Find(sel.DateTime.StartTime).First()
	endEl := doc.Find(sel.DateTime.EndTime).First()
	if dateEl.Length() == 0 || startEl.Length() == 0 || endEl.Length() == 0 {
		return it, fmt.Errorf("missing date/time elements")
	}

	it.Start, it.End, err = reicParse(scraper.Text(dateEl), scraper.Text(startEl), scraper.Text(endEl))
	return it, err
}

// reicParse combines the weekday date with the clocks. An end clock without a
// meridiem borrows the start's.
func reicParse(dateText, startClock, endClock string) (event.Timestamp, event.Timestamp, error) {
	m := reicDate.FindStringSubmatch(dateText)
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no date in %q", dateText)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}

	endClock = normalize.StripZoneSuffix(endClock)
	if normalize.Meridiem(endClock) == "" {
		meridiem := "PM"
		if normalize.Meridiem(startClock) == "AM" {
			meridiem = "AM"
		}
		endClock += " " + meridiem
	}
	return normalize.Compose(day, startClock, endClock)
}
