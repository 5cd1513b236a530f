package sites

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/bizevents/internal/extract"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// reis embeds its whole calendar as one JSON-LD array on the listing page.
func init() {
	register(&scraper.Pipeline{
		Site:    "reis",
		Require: []string{"url", "event_data_selector"},
		List:    reisList,
	})
}

func reisList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	doc, err := r.HTTP.Document(ctx, r.Cfg.URL)
	if err != nil {
		return nil, err
	}

	objs := eventArray(extract.Blocks(doc.Find(r.Cfg.EventDataSelector)), func(o map[string]any) bool {
		_, ok := o["startDate"]
		return ok
	})
	if objs == nil {
		return nil, fmt.Errorf("no event JSON-LD data found")
	}

	var items []scraper.Item
	for _, o := range objs {
		it := scraper.Item{
			Title: extract.String(o, "name"),
			Link:  extract.String(o, "url"),
		}
		it.Start, it.End, err = isoRange(extract.String(o, "startDate"), extract.String(o, "endDate"))
		if err != nil {
			r.Drop("event", itemFields(it), err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}
