package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pfrederiksen/bizevents/internal/event"
)

type dialect int

const (
	sqlite dialect = iota
	postgres
)

func (d dialect) driver() string {
	if d == postgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d dialect) String() string {
	if d == postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (d dialect) rebind(query string) string {
	if d != postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == postgres {
		id = "id BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS events (
			` + id + `,
			title TEXT NOT NULL,
			start_datetime TEXT,
			end_datetime TEXT,
			organizer TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			market TEXT NOT NULL DEFAULT '',
			attending TEXT NOT NULL DEFAULT '',
			event_link TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			valid BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_identity ON events (title, event_link, organizer)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events (start_datetime)`,
	}
}

const columns = `id, title, start_datetime, end_datetime, organizer, industry, market,
	attending, event_link, color, note, valid, created_at, updated_at`

// SQLStore implements Store on database/sql
type SQLStore struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

func openSQL(ctx context.Context, d dialect, source string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open(d.driver(), source)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", d, err)
	}
	if d == sqlite {
		// One writer; also keeps an in-memory database on a single connection.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, d: d, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) stamp() event.Timestamp {
	return event.InZone(s.now().Truncate(time.Second))
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.Organizer, &e.Industry, &e.Market,
		&e.Attending, &e.Link, &e.Color, &e.Note, &e.Valid, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) get(ctx context.Context, q querier, id int64) (*Event, error) {
	row := q.QueryRowContext(ctx, s.d.rebind(`SELECT `+columns+` FROM events WHERE id = ?`), id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading event %d: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) insert(ctx context.Context, q querier, e *Event) error {
	row := q.QueryRowContext(ctx, s.d.rebind(`INSERT INTO events
		(title, start_datetime, end_datetime, organizer, industry, market,
		attending, event_link, color, note, valid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		e.Title, e.Start, e.End, e.Organizer, e.Industry, e.Market,
		e.Attending, e.Link, e.Color, e.Note, e.Valid, e.CreatedAt, e.UpdatedAt)
	if err := row.Scan(&e.ID); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// UpsertBatch implements Store.
func (s *SQLStore) UpsertBatch(ctx context.Context, events []Event) (*UpsertResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res := &UpsertResult{Events: make([]Event, 0, len(events))}
	now := s.stamp()
	find := s.d.rebind(`SELECT ` + columns + ` FROM events
		WHERE title = ? AND event_link = ? AND organizer = ? ORDER BY id LIMIT 1`)
	update := s.d.rebind(`UPDATE events SET start_datetime = ?, end_datetime = ?, updated_at = ? WHERE id = ?`)

	for _, e := range events {
		if !e.Identified() {
			res.Skipped++
			continue
		}

		existing, err := scanEvent(tx.QueryRowContext(ctx, find, e.Title, e.Link, e.Organizer))
		switch {
		case err == nil:
			existing.Start, existing.End, existing.UpdatedAt = e.Start, e.End, now
			if _, err := tx.ExecContext(ctx, update, existing.Start, existing.End, now, existing.ID); err != nil {
				return nil, fmt.Errorf("updating event %d: %w", existing.ID, err)
			}
			res.Updated++
			res.Events = append(res.Events, *existing)
		case errors.Is(err, sql.ErrNoRows):
			e.Valid = true
			e.CreatedAt, e.UpdatedAt = now, now
			if err := s.insert(ctx, tx, &e); err != nil {
				return nil, err
			}
			res.Inserted++
			res.Events = append(res.Events, e)
		default:
			return nil, fmt.Errorf("matching event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}
	return res, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, q Query) ([]Event, error) {
	query, args := q.build(s.d)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("reading event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Event, error) {
	return s.get(ctx, s.db, id)
}

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, e Event) (*Event, error) {
	now := s.stamp()
	e.ID = 0
	e.CreatedAt, e.UpdatedAt = now, now
	if err := s.insert(ctx, s.db, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update implements Store.
func (s *SQLStore) Update(ctx context.Context, id int64, p Patch) (*Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(e)
	e.UpdatedAt = s.stamp()

	_, err = tx.ExecContext(ctx, s.d.rebind(`UPDATE events SET
		title = ?, start_datetime = ?, end_datetime = ?, organizer = ?, industry = ?, market = ?,
		attending = ?, event_link = ?, color = ?, note = ?, valid = ?, updated_at = ?
		WHERE id = ?`),
		e.Title, e.Start, e.End, e.Organizer, e.Industry, e.Market,
		e.Attending, e.Link, e.Color, e.Note, e.Valid, e.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("updating event %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return e, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id int64) (*Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, s.d.rebind(`DELETE FROM events WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("deleting event %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return e, nil
}
