package sites

import "github.com/pfrederiksen/bizevents/internal/scraper"

func init() {
	register(&scraper.Pipeline{
		Site:    "ifma_tb",
		Require: []string{"url", "base_url", "event_list_selector", "event_link_selector"},
		List:    linkList,
		Detail:  scriptDetail,
	})
}
