package sites

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// ErrNoRenderer is returned by sites that need a headless browser when the
// environment does not provide one.
var ErrNoRenderer = errors.New("no browser renderer configured")

// The calendar widget is built by script. Each day cell holds an anchor whose
// attributes carry the title, link, calendar id and epoch start/end.
const (
	tbraDaySelector = "div.SFevtcal"
	tbraEvent       = "a.SFevt"
)

func init() {
	register(&scraper.Pipeline{
		Site:    "tbra",
		Require: []string{"url"},
		List:    tbraList,
	})
}

func tbraList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	if r.Env.Renderer == nil {
		return nil, ErrNoRenderer
	}
	page, err := r.Env.Renderer.Render(ctx, r.Cfg.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	return tbraItems(r, doc), nil
}

func tbraItems(r *scraper.Run, doc *goquery.Document) []scraper.Item {
	var items []scraper.Item
	doc.Find(tbraDaySelector).Each(func(_ int, day *goquery.Selection) {
		a := day.Find(tbraEvent).First()
		if a.Length() == 0 {
			return
		}

		it := scraper.Item{
			Title: scraper.Attr(a, "data-ttl"),
			Link:  scraper.Resolve(r.Cfg.BaseURL, scraper.Attr(a, "href")),
		}
		if cal := scraper.Attr(a, "num-cal"); r.Cfg.CalendarFiltered(cal) {
			r.Filter("by calendar", logger.Fields{"title": it.Title, "calendar": cal})
			return
		}

		start, err := strconv.ParseInt(scraper.Attr(a, "num-sdp"), 10, 64)
		if err != nil {
			r.Drop("event", itemFields(it), err)
			return
		}
		end, err := strconv.ParseInt(scraper.Attr(a, "num-edp"), 10, 64)
		if err != nil {
			r.Drop("event", itemFields(it), err)
			return
		}
		it.Start, it.End = normalize.EpochToEastern(start), normalize.EpochToEastern(end)
		items = append(items, it)
	})
	return items
}
