package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
)

// ErrNotFound is returned when no event has the requested id.
var ErrNotFound = errors.New("event not found")

// DefaultDSN is used when no database is configured.
const DefaultDSN = "sqlite://data/events.db"

// Event is a stored event row
type Event struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Start     event.Timestamp `json:"start_datetime"`
	End       event.Timestamp `json:"end_datetime"`
	Organizer string          `json:"organizer"`
	Industry  string          `json:"industry"`
	Market    string          `json:"market"`
	Attending string          `json:"attending"`
	Link      string          `json:"event_link"`
	Color     string          `json:"color"`
	Note      string          `json:"note"`
	Valid     bool            `json:"valid"`
	CreatedAt event.Timestamp `json:"created_at"`
	UpdatedAt event.Timestamp `json:"updated_at"`
}

// FromCandidate maps an adapter candidate onto a new row.
func FromCandidate(c event.Candidate) Event {
	return Event{
		Title:     c.Title,
		Start:     c.Start,
		End:       c.End,
		Organizer: c.Organizer,
		Industry:  c.Industry,
		Market:    c.Market,
		Link:      c.Link,
		Valid:     true,
	}
}

// Identified reports whether the row carries the upsert identity.
func (e Event) Identified() bool {
	return strings.TrimSpace(e.Title) != "" && strings.TrimSpace(e.Link) != "" && strings.TrimSpace(e.Organizer) != ""
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
// ClearStart and ClearEnd remove a timestamp; decoded from JSON they are set
// by an explicit null.
type Patch struct {
	Title      *string          `json:"title"`
	Link       *string          `json:"event_link"`
	Organizer  *string          `json:"organizer"`
	Market     *string          `json:"market"`
	Industry   *string          `json:"industry"`
	Attending  *string          `json:"attending"`
	Color      *string          `json:"color"`
	Note       *string          `json:"note"`
	Start      *event.Timestamp `json:"start_datetime"`
	End        *event.Timestamp `json:"end_datetime"`
	Valid      *bool            `json:"valid"`
	ClearStart bool             `json:"-"`
	ClearEnd   bool             `json:"-"`
}

// UnmarshalJSON decodes a patch. A key that is absent leaves its field
// untouched while "start_datetime": null clears the start (likewise the end).
func (p *Patch) UnmarshalJSON(data []byte) error {
	type plain Patch
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ClearStart = isNull(raw["start_datetime"])
	p.ClearEnd = isNull(raw["end_datetime"])
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Apply copies the set fields of p onto e.
func (p Patch) Apply(e *Event) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Title, p.Title)
	set(&e.Link, p.Link)
	set(&e.Organizer, p.Organizer)
	set(&e.Market, p.Market)
	set(&e.Industry, p.Industry)
	set(&e.Attending, p.Attending)
	set(&e.Color, p.Color)
	set(&e.Note, p.Note)
	switch {
	case p.ClearStart:
		e.Start = event.Timestamp{}
	case p.Start != nil:
		e.Start = *p.Start
	}
	switch {
	case p.ClearEnd:
		e.End = event.Timestamp{}
	case p.End != nil:
		e.End = *p.End
	}
	if p.Valid != nil {
		e.Valid = *p.Valid
	}
}

// UpsertResult reports what a batch upsert did
type UpsertResult struct {
	Events   []Event
	Inserted int
	Updated  int
	Skipped  int
}

// Store is the persistence boundary used by ingestion and the API
type Store interface {
	// UpsertBatch matches each event on title, link and organizer in one
	// transaction. Matches get their start, end and updated_at overwritten;
	// the rest are inserted as valid. Events missing any of the three are
	// skipped.
	UpsertBatch(ctx context.Context, events []Event) (*UpsertResult, error)
	List(ctx context.Context, q Query) ([]Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, e Event) (*Event, error)
	Update(ctx context.Context, id int64, p Patch) (*Event, error)
	// Delete removes the row and returns it as it was.
	Delete(ctx context.Context, id int64) (*Event, error)
	Ping(ctx context.Context) error
	Close() error
}

// Option configures a store
type Option func(*SQLStore)

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		s.now = now
	}
}

// Open connects to dsn and migrates the schema. Supported forms are
// sqlite://path, sqlite::memory: and postgres:// (or postgresql://) URLs.
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	var d dialect
	var source string
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		d, source = postgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		d, source = sqlite, strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		d, source = sqlite, strings.TrimPrefix(dsn, "sqlite:")
	default:
		return nil, fmt.Errorf("unsupported database %q: expected sqlite:// or postgres://", dsn)
	}

	if d == sqlite && source != ":memory:" {
		path, _, _ := strings.Cut(source, "?")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	return openSQL(ctx, d, source, opts...)
}
