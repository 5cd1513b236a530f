package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/normalize"
)

// Strings returns the trimmed, non-empty text nodes under sel in document order.
func Strings(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

// TextSep joins the trimmed text nodes under sel with sep.
func TextSep(sel *goquery.Selection, sep string) string {
	return strings.Join(Strings(sel), sep)
}

// Text returns the text under sel with each text node trimmed and the result
// whitespace-normalized.
func Text(sel *goquery.Selection) string {
	return normalize.Clean(TextSep(sel, " "))
}

// Attr returns a trimmed attribute of the first node in sel.
func Attr(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

// Resolve joins a possibly relative href onto base. An empty href yields "".
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}

// ListOptions describes a listing page where each block holds a link and a title
type ListOptions struct {
	// Block, Link and Title are CSS selectors; Link and Title are relative to Block.
	// An empty Title reads the title from the link element.
	Block string
	Link  string
	Title string
	// TitleAttr reads the title from an attribute instead of the text.
	TitleAttr string
}

// ListFromConfig builds ListOptions from the standard selector keys.
func (r *Run) ListFromConfig() ListOptions {
	return ListOptions{
		Block: r.Cfg.EventListSelector,
		Link:  r.Cfg.EventLinkSelector,
		Title: r.Cfg.EventTitleSelector,
	}
}

// Blocks walks the listing blocks of doc, resolving each block's link against
// base_url and applying the title filter. Blocks without a link or title are
// skipped silently. fn may amend the item from the block and return false to
// drop it.
func (r *Run) Blocks(doc *goquery.Document, opts ListOptions, fn func(block *goquery.Selection, it *Item) bool) []Item {
	var items []Item
	doc.Find(opts.Block).Each(func(_ int, block *goquery.Selection) {
		linkSel := block
		if opts.Link != "" {
			linkSel = block.Find(opts.Link).First()
		}
		titleSel := linkSel
		if opts.Title != "" {
			titleSel = block.Find(opts.Title).First()
		}
		if linkSel.Length() == 0 || titleSel.Length() == 0 {
			return
		}

		title := Text(titleSel)
		if opts.TitleAttr != "" {
			title = Attr(titleSel, opts.TitleAttr)
		}
		link := Resolve(r.Cfg.BaseURL, Attr(linkSel, "href"))
		if title == "" || link == "" {
			return
		}

		if r.Cfg.FilteredTitle(title) {
			r.Filter("by title", logger.Fields{"title": title})
			return
		}

		it := Item{Title: title, Link: link}
		if fn != nil && !fn(block, &it) {
			return
		}
		items = append(items, it)
	})
	return items
}

// ListPage fetches the configured listing URL and walks its blocks.
func (r *Run) ListPage(ctx context.Context, opts ListOptions, fn func(block *goquery.Selection, it *Item) bool) ([]Item, error) {
	doc, err := r.HTTP.Document(ctx, r.Cfg.URL)
	if err != nil {
		return nil, err
	}
	return r.Blocks(doc, opts, fn), nil
}
