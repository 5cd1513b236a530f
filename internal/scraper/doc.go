// Package scraper defines the adapter contract every event site implements and
// the list-then-detail pipeline most of them share.
//
// A run fetches a listing page (or feed), pauses for the site's configured
// interval, then visits each item's detail page when the listing lacks dates.
// Listing failures fail the site. Item failures drop that item, are logged
// with the site name, and never abort the run. The package also carries DOM
// text helpers that read listing markup the way the sites lay it out.
package scraper
