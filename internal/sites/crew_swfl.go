package sites

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/bizevents/internal/extract"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "crew_swfl",
		Require: []string{"url"},
		List:    crewSWFLList,
	})
}

func crewSWFLList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	doc, err := r.HTTP.Document(ctx, r.Cfg.URL)
	if err != nil {
		return nil, err
	}

	objs := eventArray(extract.JSONLD(doc.Selection, false), extract.IsEvent)
	if objs == nil {
		return nil, fmt.Errorf("no JSON-LD event array found")
	}

	var items []scraper.Item
	for _, o := range objs {
		it := scraper.Item{
			Title: extract.String(o, "name"),
			Link:  extract.String(o, "url"),
		}
		if r.Cfg.FilteredTitle(it.Title) {
			r.Filter("by title", logger.Fields{"title": it.Title})
			continue
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
