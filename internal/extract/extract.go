// Package extract pulls structured data out of script blocks embedded in
// event pages: JSON-LD, Next.js page data and JavaScript object literals.
//
// These are targeted text scrapers for the shapes the sites actually publish,
// not general parsers. Anything that does not match is reported as absent.
package extract

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

var (
	literalNewline = regexp.MustCompile(`(^|[^\\])\\n`)
	rawNewlines    = regexp.MustCompile(`[\r\n]+`)
)

// JSONLD decodes every JSON-LD block under sel, in document order. Blocks that
// fail to decode are skipped. With sanitize set, HTML entities are decoded and
// newlines removed before decoding, for sites that emit unescaped descriptions.
func JSONLD(sel *goquery.Selection, sanitize bool) []any {
	scripts := sel.Find(jsonLDSelector)
	if goquery.NodeName(sel) == "script" {
		scripts = sel
	}
	return decodeBlocks(scripts, sanitize)
}

// Blocks decodes the JSON content of the given script elements.
func Blocks(scripts *goquery.Selection) []any {
	return decodeBlocks(scripts, false)
}

func decodeBlocks(scripts *goquery.Selection, sanitize bool) []any {
	var blocks []any
	scripts.Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		if sanitize {
			raw = Sanitize(raw)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}

// Sanitize decodes HTML entities and replaces literal and raw newlines with spaces.
func Sanitize(raw string) string {
	s := html.UnescapeString(raw)
	s = literalNewline.ReplaceAllString(s, "$1 ")
	return rawNewlines.ReplaceAllString(s, " ")
}

// Objects flattens a decoded block into its JSON objects. A top-level array
// yields its object members; an "@graph" wrapper yields its members.
func Objects(block any) []map[string]any {
	switch v := block.(type) {
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			return Objects(graph)
		}
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// IsEvent reports whether a JSON-LD object is typed Event.
func IsEvent(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Event"
	case []any:
		for _, v := range t {
			if v == "Event" {
				return true
			}
		}
	}
	return false
}

// FirstEvent returns the first Event object across blocks.
func FirstEvent(blocks []any) (map[string]any, bool) {
	for _, b := range blocks {
		for _, obj := range Objects(b) {
			if IsEvent(obj) {
				return obj, true
			}
		}
	}
	return nil, false
}

// String returns obj[key] as a trimmed string. Numbers are formatted without
// exponent; anything else is empty.
func String(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

// NextData decodes the Next.js page payload in script#__NEXT_DATA__ into v.
func NextData(doc *goquery.Document, v any) error {
	script := doc.Find(`script#__NEXT_DATA__`).First()
	if script.Length() == 0 {
		return fmt.Errorf("no __NEXT_DATA__ script")
	}
	if err := json.Unmarshal([]byte(script.Text()), v); err != nil {
		return fmt.Errorf("decoding __NEXT_DATA__: %w", err)
	}
	return nil
}
