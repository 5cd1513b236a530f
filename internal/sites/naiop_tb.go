package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

// scriptSelectorPrefix marks a detail selector that reads the embedded
// "const event" object instead of page markup.
const scriptSelectorPrefix = "script:event."

type naiopTBSelectors struct {
	DateTime struct {
		StartDT string `json:"start_dt_selector"`
	} `json:"DateTime"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "naiop_tb",
		Require: keys("detail_selectors"),
		List: func(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
			return r.ListPage(ctx, r.ListFromConfig(), nil)
		},
		Detail: naiopTBDetail,
	})
}

func naiopTBDetail(ctx context.Context, r *scraper.Run, it scraper.Item) (scraper.Item, error) {
	var sel naiopTBSelectors
	if err := r.Cfg.DetailSelectors(&sel); err != nil {
		return it, err
	}
	if !strings.HasPrefix(sel.DateTime.StartDT, scriptSelectorPrefix) {
		return it, fmt.Errorf("unsupported start_dt_selector %q", sel.DateTime.StartDT)
	}
	return scriptDetail(ctx, r, it)
}
