// Package storage persists ingested events in a relational database.
//
// One database/sql implementation serves SQLite (github.com/mattn/go-sqlite3)
// and PostgreSQL (github.com/jackc/pgx/v5/stdlib). The backend is picked from
// the DSN scheme and the schema is created on open. Events are identified for
// upserts by title, link and organizer; timestamps are stored as text so that
// naive and zone-aware values keep their form.
package storage
