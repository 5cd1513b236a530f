package sites

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/scraper"
)

const (
	abcFeedLayout   = "2006-01-02 15:04:05.000"
	abcWindow       = 30 * 24 * time.Hour
	abcEventsBase   = "https://web.abcflgulf.org/events/"
	abcEducational  = "Educational Event"
	abcEntryElement = "newCalendarDatav3"
	abcSouthwestOrg = "ABC SWFL"
	abcSouthwestMkt = "SWFL"
	abcTampaOrg     = "ABC TB"
	abcTampaMkt     = "TPA"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// abcEntry is one calendar entry of the chapter's XML feed.
type abcEntry struct {
	ID              string `xml:"id"`
	Title           string `xml:"title"`
	EventType       string `xml:"EventType"`
	Start           string `xml:"StartDateTimeUtc"`
	End             string `xml:"EndDateTimeUtc"`
	RegistrationURL string `xml:"registrationUrl"`
}

func init() {
	register(&scraper.Pipeline{
		Site:    "abc_swfl_tampa",
		Require: []string{"url"},
		List:    abcList,
	})
}

// abcList reads the next thirty days of the shared Gulf Coast calendar. Fort
// Myers events belong to the Southwest Florida chapter, the rest to Tampa.
func abcList(ctx context.Context, r *scraper.Run) ([]scraper.Item, error) {
	now := r.Now()
	query := url.Values{
		"startdate": {now.Format(abcFeedLayout)},
		"enddate":   {now.Add(abcWindow).Format(abcFeedLayout)},
		"_":         {strconv.FormatInt(now.UnixMilli(), 10)},
	}
	body, err := r.HTTP.Bytes(ctx, r.Cfg.URL, query)
	if err != nil {
		return nil, err
	}
	entries, err := abcEntries(body)
	if err != nil {
		return nil, fmt.Errorf("decoding calendar feed: %w", err)
	}

	var items []scraper.Item
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = "N/A"
		}
		if strings.TrimSpace(e.EventType) == abcEducational {
			r.Filter("by type", logger.Fields{"title": title})
			continue
		}

		it := scraper.Item{
			Title:     title,
			Link:      abcLink(r.Cfg.BaseURL, r.Cfg.URL, title, e),
			Organizer: abcTampaOrg,
			Market:    abcTampaMkt,
		}
		if strings.HasPrefix(title, "Fort Myers") || strings.HasPrefix(title, "Ft Myers") {
			it.Organizer, it.Market = abcSouthwestOrg, abcSouthwestMkt
		}

		it.Start, it.End, err = easternRange(strings.TrimSpace(e.Start), strings.TrimSpace(e.End))
		if err != nil {
			r.Drop("event", itemFields(it), err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// abcEntries collects every calendar entry element regardless of the
// envelope around it.
func abcEntries(body []byte) ([]abcEntry, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	var entries []abcEntry
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != abcEntryElement {
			continue
		}
		var e abcEntry
		if err := dec.DecodeElement(&e, &start); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}

func abcLink(base, fallback, title string, e abcEntry) string {
	if id := strings.TrimSpace(e.ID); id != "" {
		if base == "" {
			base = abcEventsBase
		}
		return strings.TrimRight(base, "/") + "/" + url.PathEscape(title+"-"+id) + "/details"
	}
	if reg := strings.TrimSpace(e.RegistrationURL); reg != "" {
		return reg
	}
	return fallback
}
