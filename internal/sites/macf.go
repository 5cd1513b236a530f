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

var (
	// "Starts: May 15, 2025 09:00 AM (ET) Ends: May 18, 2025 05:00 PM (ET)"
	macfStartsEnds = regexp.MustCompile(`Starts:\s*([A-Za-z]+ \d{1,2}, \d{4})\s+(\d{1,2}:\d{2} [APMapm]{2}).*?Ends:\s*([A-Za-z]+ \d{1,2}, \d{4})\s+(\d{1,2}:\d{2} [APMapm]{2})`)
	// "Apr 16, 2025 from 08:30 AM to 12:00 PM (ET)"
	macfFromTo = regexp.MustCompile(`([A-Za-z]+ \d{1,2}, \d{4})\s+from\s+(\d{1,2}:\d{2} [APMapm]{2})\s+to\s+(\d{1,2}:\d{2} [APMapm]{2})`)
)

func init() {
	register(&scraper.Pipeline{
		Site:    "macf",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: macfDetail,
	})
}

func macfDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel dateTimeSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	doc, err := r.HTTP.Document(ctx, it.Link)
	if err != nil {
		return it, err
	}
	container := doc.Find(sel.DateTime.DateSelector).First()
	if container.Length() == 0 {
		return it, fmt.Errorf("no date element")
	}
	it.Start, it.End, err = macfParse(scraper.Text(container))
	return it, err
}

// macfParse handles multi-day "Starts:/Ends:" text and single-day "from/to" text.
func macfParse(text string) (event.Timestamp, event.Timestamp, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "When:", ""))

	if strings.Contains(text, "Starts:") && strings.Contains(text, "Ends:") {
		m := macfStartsEnds.FindStringSubmatch(text)
		if m == nil {
			return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no starts/ends in %q", text)
		}
		start, err := macfStamp(m[1], m[2])
		if err != nil {
			return event.Timestamp{}, event.Timestamp{}, err
		}
		end, err := macfStamp(m[3], m[4])
		if err != nil {
			return event.Timestamp{}, event.Timestamp{}, err
		}
		return event.Naive(start), event.Naive(end), nil
	}

	m := macfFromTo.FindStringSubmatch(text)
	if m == nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("no from/to range in %q", text)
	}
	day, err := normalize.Parse(m[1], normalize.LayoutShortDate, normalize.LayoutLongDate)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, err
	}
	return normalize.Compose(day, m[2], m[3])
}

func macfStamp(date, clock string) (time.Time, error) {
	day, err := normalize.Parse(date, normalize.LayoutLongDate, normalize.LayoutShortDate)
	if err != nil {
		return time.Time{}, err
	}
	return normalize.At(day, clock)
}
