package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EventMarker is the declaration that introduces the event object on
// calendar-platform detail pages.
const EventMarker = "const event"

var (
	eventBlock = regexp.MustCompile(`(?s)const event\s*=\s*(\{.*?\})\s*;`)
	pairs      = regexp.MustCompile(`(\w+)\s*:\s*'([^']*)'|\b(\w+)\s*:\s*"([^"]*)"`)
)

// ScriptObject finds the first script containing marker and returns the
// quoted key/value pairs of its object literal. When the literal cannot be
// delimited, pairs are read from the whole script text. The first occurrence
// of a key wins. The bool is false when no script matched or no pair was found.
func ScriptObject(doc *goquery.Document, marker string) (map[string]string, bool) {
	var found map[string]string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, marker) {
			return true
		}
		body := text
		if m := eventBlock.FindStringSubmatch(text); m != nil {
			body = m[1]
		}
		obj := Pairs(body)
		if len(obj) == 0 {
			return true
		}
		found = obj
		return false
	})
	return found, found != nil
}

// Pairs extracts key: 'value' and key: "value" pairs from JavaScript source.
func Pairs(src string) map[string]string {
	out := make(map[string]string)
	for _, m := range pairs.FindAllStringSubmatch(src, -1) {
		key, value := m[1], m[2]
		if key == "" {
			key, value = m[3], m[4]
		}
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
