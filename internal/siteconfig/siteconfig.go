// Package siteconfig loads the per-site JSON configuration that drives each
// adapter: URLs, CSS selectors, fixed attribution fields and filters.
//
// Only the keys shared by several adapters are typed here. The nested
// detail_selectors object differs per site and is decoded by the adapter that
// owns it. Presence of required keys is checked at the point of use with
// Require, so a missing key fails that site and nothing else.
package siteconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrMissingKey is returned by Require when a configuration key is absent.
var ErrMissingKey = errors.New("missing configuration key")

// DefaultInterval is the politeness delay used when scraper_interval is unset.
const DefaultInterval = time.Second

// Text is a scalar that sites write either as a JSON string or a number.
type Text string

// UnmarshalJSON accepts strings and numbers.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// Config is one site's configuration
type Config struct {
	Name string `json:"-"`

	URL     string `json:"url"`
	BaseURL string `json:"base_url"`
	URL2    string `json:"url2"`

	EventListSelector  string `json:"event_list_selector"`
	EventLinkSelector  string `json:"event_link_selector"`
	EventTitleSelector string `json:"event_title_selector"`
	EventTimeSelector  string `json:"event_time_selector"`
	EventDataSelector  string `json:"event_data_selector"`
	DateAttrSelector   string `json:"date_attr_selector"`
	StartMetaSelector  string `json:"start_meta_selector"`
	EndMetaSelector    string `json:"end_meta_selector"`

	Organizer string `json:"organizer"`
	Industry  string `json:"industry"`
	Market    string `json:"market"`

	ScraperInterval *float64 `json:"scraper_interval"`
	SSLVerify       *bool    `json:"ssl_verify"`

	TitleFilter       []string `json:"title_filter"`
	CalendarFilter    []Text   `json:"calendar_filter"`
	Calendar          Text     `json:"calendar"`
	EventTypeSelector []string `json:"event_type_selector"`
	ProgramFilter     []string `json:"program_filter"`
	TypeFilter        []string `json:"type_filter"`

	Detail json.RawMessage `json:"detail_selectors"`

	keys map[string]json.RawMessage
}

// Parse decodes a configuration document.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &cfg.keys); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", name, err)
	}
	cfg.Name = name
	return &cfg, nil
}

// Load reads <dir>/<site>.json.
func Load(dir, site string) (*Config, error) {
	path := filepath.Join(dir, site+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(site, data)
}

// List returns the site names that have a configuration file in dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Has reports whether key is present and not null.
func (c *Config) Has(key string) bool {
	raw, ok := c.keys[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Require returns ErrMissingKey naming every absent key.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !c.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}

// DetailSelectors decodes the site-specific detail_selectors object into v.
func (c *Config) DetailSelectors(v any) error {
	if len(c.Detail) == 0 {
		return fmt.Errorf("%w: detail_selectors", ErrMissingKey)
	}
	if err := json.Unmarshal(c.Detail, v); err != nil {
		return fmt.Errorf("decoding detail_selectors: %w", err)
	}
	return nil
}

// Interval is the politeness delay between requests.
func (c *Config) Interval() time.Duration {
	if c.ScraperInterval == nil {
		return DefaultInterval
	}
	if *c.ScraperInterval <= 0 {
		return 0
	}
	return time.Duration(*c.ScraperInterval * float64(time.Second))
}

// VerifyTLS reports whether certificates should be verified (default true).
func (c *Config) VerifyTLS() bool {
	return c.SSLVerify == nil || *c.SSLVerify
}

// FilteredTitle reports whether title contains any title_filter phrase,
// ignoring case.
func (c *Config) FilteredTitle(title string) bool {
	return ContainsAny(title, c.TitleFilter)
}

// CalendarFiltered reports whether cal is listed in calendar_filter.
func (c *Config) CalendarFiltered(cal string) bool {
	for _, f := range c.CalendarFilter {
		if string(f) == cal {
			return true
		}
	}
	return false
}

// ContainsAny reports whether s contains any of the phrases, ignoring case.
func ContainsAny(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
