// Package event defines the normalized candidate record produced by every site
// adapter, the timestamp type that keeps naive and zone-aware values apart, and
// the deduplication pass applied to each adapter's output.
//
// A candidate is identified by its lowercased, trimmed title and link. Two
// candidates with the same key are the same event; the first one seen wins.
package event
