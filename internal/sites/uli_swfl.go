package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
)

const (
	uliLayout     = "2006-01-02 3:04 PM"
	uliDetailPath = "/uli-southwest-florida-webinars-events/detail/"
	uliOwnChapter = "uli southwest florida"
)

// uliEvent is one entry of the district council events API.
type uliEvent struct {
	Title        string `json:"Event_Title"`
	Registration string `json:"Registrant_List_Link"`
	ID           any    `json:"Event_Id"`
	StartDate    string `json:"Start_Date"`
	StartTime    string `json:"Start_Time"`
	EndDate      string `json:"End_Date"`
	EndTime      string `json:"End_Time"`
	Programs     string `json:"Event_Programs"`
	Types        string `json:"Event_Types"`
	City         string `json:"City"`
}

// uliCities reassigns events held in another chapter's city.
var uliCities = map[string]struct{ organizer, market string }{
	"tampa":   {"ULI TB", "TPA"},
	"orlando": {"ULI CF", "ORL"},
}

func init() {
	register(&scraper.Pipeline{
		Site:    "uli_swfl",
		Require: []string{"url", "base_url"},
		List:    uliList,
	})
}

// uliList reads the current year's feed at <url>/<year>.
func uliList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	if err := r.Pause(ctx); err != nil {
		return nil, err
	}
	feed := fmt.Sprintf("%s/%d", strings.TrimRight(r.Cfg.URL, "/"), r.Now().Year())
	var data struct {
		Events []uliEvent `json:"events"`
	}
	if err := r.HTTP.JSON(ctx, feed, nil, &data); err != nil {
		return nil, err
	}

	var items []scraper.Item
	for _, e := range data.Events {
		it := scraper.Item{
			Title: strings.TrimSpace(e.Title),
			Link:  strings.TrimSpace(e.Registration),
		}
		if id := crewID(e.ID); strings.TrimSpace(id) != "" {
			it.Link = strings.TrimRight(r.Cfg.BaseURL, "/") + uliDetailPath + strings.TrimSpace(id)
		}

		if reason := uliExcluded(r.Cfg, e, it.Title); reason != "" {
			r.Filter(reason, itemFields(it))
			continue
		}
		if c, ok := uliCities[strings.ToLower(strings.TrimSpace(e.City))]; ok {
			it.Organizer, it.Market = c.organizer, c.market
		}

		var err error
		it.Start, it.End, err = uliRange(e)
		if err != nil {
			r.Drop("event", itemFields(it), err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// uliExcluded returns why an event is left out, or "". The chapter's own
// events are published through another source.
func uliExcluded(cfg *siteconfig.Config, e uliEvent, title string) string {
	switch {
	case strings.Contains(strings.ToLower(title), uliOwnChapter):
		return "own chapter"
	case containsFold(cfg.ProgramFilter, strings.TrimSpace(e.Programs)):
		return "by program"
	case containsFold(cfg.TypeFilter, strings.TrimSpace(e.Types)):
		return "by type"
	}
	return ""
}

func uliRange(e uliEvent) (event.Timestamp, event.Timestamp, error) {
	start, err := uliStamp(e.StartDate, e.StartTime, normalize.DefaultStartClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("start: %w", err)
	}
	end, err := uliStamp(e.EndDate, e.EndTime, normalize.DefaultEndClock)
	if err != nil {
		return event.Timestamp{}, event.Timestamp{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

func uliStamp(date, clock, fallback string) (event.Timestamp, error) {
	if len(date) > 10 {
		date = date[:10]
	}
	if strings.TrimSpace(clock) == "" {
		clock = fallback
	}
	t, err := normalize.Parse(date+" "+clock, uliLayout)
	if err != nil {
		return event.Timestamp{}, err
	}
	return event.Naive(t), nil
}
