package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/bizevents/internal/extract"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/scraper"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
)

const crewWindow = 60 * 24 * time.Hour

// crewEvent is one entry of the chapter events API.
type crewEvent struct {
	Title           string `json:"title"`
	Chapter         string `json:"chapter"`
	NetforumID      any    `json:"netforumId"`
	StartDateTime   string `json:"startDateTime"`
	EndDateTime     string `json:"endDateTime"`
	RegistrationURL string `json:"registrationUrl"`
}

// crewPage is the part of the chapter page payload that maps event ids to
// content slugs.
type crewPage struct {
	Props struct {
		PageProps struct {
			PageProps struct {
				Story struct {
					Content struct {
						PageTemplate []struct {
							Events []struct {
								NetforumID any    `json:"netforum_event_id"`
								FullSlug   string `json:"full_slug"`
							} `json:"storyblok_events"`
						} `json:"page_template"`
					} `json:"content"`
				} `json:"story"`
			} `json:"pageProps"`
		} `json:"pageProps"`
	} `json:"props"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "crew_srq",
		Require: []string{"url", "url2", "base_url", "event_type_selector"},
		List:    crewList,
	})
}

func crewList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	slugs := crewSlugs(ctx, r)
	if err := r.Pause(ctx); err != nil {
		return nil, err
	}

	now := r.Now()
	query := url.Values{
		"minEndDate": {now.Format("2006-01-02")},
		"maxEndDate": {now.Add(crewWindow).Format("2006-01-02")},
	}
	var all []crewEvent
	if err := r.HTTP.JSON(ctx, r.Cfg.URL, query, &all); err != nil {
		return nil, err
	}

	var items []scraper.Item
	for _, e := range all {
		if !crewChapter(r.Cfg, e.Chapter) {
			continue
		}
		it := scraper.Item{
			Title: orDefault(strings.TrimSpace(e.Title), "Untitled"),
			Link:  crewLink(r.Cfg, slugs[crewID(e.NetforumID)], e.RegistrationURL),
		}
		var err error
		it.Start, it.End, err = isoRange(e.StartDateTime, e.EndDateTime)
		if err != nil {
			r.Drop("event", itemFields(it), err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// crewSlugs maps event ids to slugs from the chapter page. A page that cannot
// be read only costs the links, so failures are logged and an empty map returned.
func crewSlugs(ctx context.Context, r *scraper.Run) map[string]string {
	slugs := make(map[string]string)
	doc, err := r.HTTP.Document(ctx, r.Cfg.URL2)
	if err != nil {
		r.Log.Warn("Fetching slug map", logger.Fields{"url": r.Cfg.URL2}, err)
		return slugs
	}
	var page crewPage
	if err := extract.NextData(doc, &page); err != nil {
		r.Log.Warn("Decoding slug map", nil, err)
		return slugs
	}
	tpl := page.Props.PageProps.PageProps.Story.Content.PageTemplate
	if len(tpl) == 0 {
		r.Log.Warn("Decoding slug map", nil, fmt.Errorf("no page template"))
		return slugs
	}
	for _, e := range tpl[0].Events {
		slugs[crewID(e.NetforumID)] = e.FullSlug
	}
	return slugs
}

func crewChapter(cfg *siteconfig.Config, chapter string) bool {
	for _, c := range cfg.EventTypeSelector {
		if c == chapter {
			return true
		}
	}
	return false
}

// crewID normalizes ids that arrive as strings in one payload and numbers in
// the other.
func crewID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}

// crewLink drops the first two slug segments ("chapters/<name>") and joins the
// rest onto base_url.
func crewLink(cfg *siteconfig.Config, slug, registration string) string {
	parts := strings.Split(strings.Trim(slug, "/"), "/")
	if slug != "" && len(parts) > 2 {
		return strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Join(parts[2:], "/")
	}
	if registration != "" {
		return registration
	}
	return cfg.URL2
}
