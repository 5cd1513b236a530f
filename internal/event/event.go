package event

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrIncomplete is returned by Validate for candidates that cannot be stored.
var ErrIncomplete = errors.New("incomplete candidate")

// Candidate is the uniform record every site adapter produces
type Candidate struct {
	Title     string    `json:"Event Title"`
	Link      string    `json:"Event Link"`
	Start     Timestamp `json:"start_dt"`
	End       Timestamp `json:"end_dt"`
	Organizer string    `json:"Organizer"`
	Industry  string    `json:"Industry"`
	Market    string    `json:"Market"`
	Address   string    `json:"Address,omitempty"`
	Weekday   string    `json:"Weekday,omitempty"`
}

// Validate checks that the candidate has a title, an absolute link and both
// timestamps.
func (c *Candidate) Validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return fmt.Errorf("%w: missing title", ErrIncomplete)
	case strings.TrimSpace(c.Link) == "":
		return fmt.Errorf("%w: missing link", ErrIncomplete)
	case c.Start.IsZero():
		return fmt.Errorf("%w: missing start", ErrIncomplete)
	case c.End.IsZero():
		return fmt.Errorf("%w: missing end", ErrIncomplete)
	}
	u, err := url.Parse(c.Link)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: link is not absolute: %s", ErrIncomplete, c.Link)
	}
	return nil
}

// Key identifies a candidate for deduplication
type Key struct {
	Title string
	Link  string
}

// KeyOf returns the case- and whitespace-insensitive identity of c.
func KeyOf(c Candidate) Key {
	return Key{
		Title: strings.ToLower(strings.TrimSpace(c.Title)),
		Link:  strings.ToLower(strings.TrimSpace(c.Link)),
	}
}

func (k Key) String() string {
	return k.Title + "|" + k.Link
}
