package normalize

import (
	"regexp"
	"strings"
)

var (
	zoneSuffix  = regexp.MustCompile(`\s*\(?\b[A-Z]{2,4}\)?$`)
	gmtParen    = regexp.MustCompile(`\s*\(GMT[^)]*\)`)
	zoneParen   = regexp.MustCompile(`\s*\([A-Z]{2,4}\)`)
	boilerplate = regexp.MustCompile(`(?is)Add to Calendar.*$`)
	gluedYear   = regexp.MustCompile(`(\d{4})(\d{1,2}:\d{2})`)
)

// StripZoneSuffix removes a trailing zone abbreviation such as "EDT" or "(ET)".
// Meridiem markers are not treated as zones.
func StripZoneSuffix(s string) string {
	s = strings.TrimSpace(s)
	loc := zoneSuffix.FindStringIndex(s)
	if loc == nil {
		return s
	}
	tail := strings.Trim(strings.TrimSpace(s[loc[0]:]), "()")
	if tail == "AM" || tail == "PM" {
		return s
	}
	return strings.TrimSpace(s[:loc[0]])
}

// StripZoneParens removes "(GMT-04:00)" style and "(EDT)" style annotations
// anywhere in the text.
func StripZoneParens(s string) string {
	s = gmtParen.ReplaceAllString(s, "")
	s = zoneParen.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// StripBoilerplate drops an "Add to Calendar" widget label and everything after it.
func StripBoilerplate(s string) string {
	return strings.TrimSpace(boilerplate.ReplaceAllString(s, ""))
}

// SplitGluedYear separates a year run into a following clock, as in
// "April 16, 20259:00 AM".
func SplitGluedYear(s string) string {
	return gluedYear.ReplaceAllString(s, "$1 $2")
}

// TrimLabel removes a leading label such as "When:" or "Starts".
func TrimLabel(s, label string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		return strings.TrimSpace(s[len(label):])
	}
	return s
}

// FirstWords returns the first n space-separated words of s.
func FirstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
