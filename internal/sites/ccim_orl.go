package sites

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/extract"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// ccim_orl serves a calendar plugin feed keyed by numeric field ids.
const (
	ccimTitle      = "3"
	ccimLink       = "6"
	ccimTypes      = "10"
	ccimStartDate  = "15"
	ccimStartClock = "16"
	ccimEndDate    = "17"
	ccimEndClock   = "18"

	ccimWindow      = 60 * 24 * time.Hour
	ccimPlaceholder = "#"
)

// Event type codes for member-only and committee entries.
var ccimExcludedTypes = map[string]bool{"289": true, "645": true}

func init() {
	register(&scraper.Pipeline{
		Site:    "ccim_orl",
		Require: []string{"url", "calendar"},
		List:    ccimList,
	})
}

func ccimList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	now := r.Now()
	query := url.Values{
		"rhc_action":  {"get_calendar_events"},
		"post_type[]": {"events"},
		"calendar":    {string(r.Cfg.Calendar)},
		"start":       {strconv.FormatInt(now.Unix(), 10)},
		"end":         {strconv.FormatInt(now.Add(ccimWindow).Unix(), 10)},
		"rhc_shrink":  {"1"},
		"view":        {"month"},
	}

	var feed struct {
		Events []map[string]any `json:"EVENTS"`
	}
	if err := r.HTTP.JSON(ctx, r.Cfg.URL, query, &feed); err != nil {
		return nil, err
	}

	var items []scraper.Item
	for _, e := range feed.Events {
		it := scraper.Item{
			Title: orDefault(extract.String(e, ccimTitle), "Unknown"),
			Link:  extract.String(e, ccimLink),
		}

		if ccimHasExcludedType(e[ccimTypes]) {
			r.Filter("by event type", itemFields(it))
			continue
		}

		startDate := extract.String(e, ccimStartDate)
		endDate := startDate
		if _, ok := e[ccimEndDate]; ok {
			endDate = extract.String(e, ccimEndDate)
		}
		if startDate == ccimPlaceholder || endDate == ccimPlaceholder {
			r.Filter("undated event", logger.Fields{"title": it.Title})
			continue
		}

		var err error
		it.Start, it.End, err = ccimRange(startDate, ccimClock(e, ccimStartClock, "00:00"), endDate, ccimClock(e, ccimEndClock, "23:59"))
		if err != nil {
			r.Drop("event", itemFields(it), err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func ccimClock(e map[string]any, key, fallback string) string {
	v, ok := e[key]
	if !ok {
		return fallback
	}
	s, _ := v.(string)
	if s == ccimPlaceholder {
		return fallback
	}
	return s
}

func ccimRange(startDate, startClock, endDate, endClock string) (event.Timestamp, event.Timestamp, error) {
	const layout = "2006-01-02 15:04"
	start, err := normalize.Parse(startDate+" "+startClock, layout)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("start: %w", err)
	}
	end, err := normalize.Parse(endDate+" "+endClock, layout)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("end: %w", err)
	}
	return event.Naive(start), event.Naive(end), nil
}

// ccimHasExcludedType reads the type list, which the feed writes as numbers
// or numeric strings.
func ccimHasExcludedType(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, t := range list {
		switch x := t.(type) {
		case float64:
			if ccimExcludedTypes[strconv.FormatFloat(x, 'f', -1, 64)] {
				return true
			}
		case string:
			if ccimExcludedTypes[x] {
				return true
			}
		}
	}
	return false
}
