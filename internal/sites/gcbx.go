package sites

import "github.com/pfrederiksen/bizevents/internal/scraper"

func init() {
	register(&scraper.Pipeline{
		Site:    "gcbx",
		Require: []string{"url", "base_url", "event_list_selector", "event_title_selector"},
		List:    titleLinkList,
		Detail:  scriptDetail,
	})
}
