// Package sites holds one adapter per event source. Each adapter encodes its
// site's markup or feed contract and is registered by the name used for its
// configuration file.
package sites

import (
	"sort"

	"github.com/pfrederiksen/bizevents/internal/scraper"
)

var registry = map[string]scraper.Adapter{}

func register(a scraper.Adapter) {
	if _, dup := registry[a.Name()]; dup {
		panic("sites: duplicate adapter " + a.Name())
	}
	registry[a.Name()] = a
}

// Lookup returns the adapter registered under name.
func Lookup(name string) (scraper.Adapter, bool) {
	a, ok := registry[name]
	return a, ok
}

// Names returns every registered site name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
