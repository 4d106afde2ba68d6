/*
Package sqlite provides a SQLite-backed people directory and reporter.

PURPOSE:
  Opens a SQLite database, creates the people/locations/roles schema and
  hands back a sqlstore.Store with "?" placeholders. The reporting SQL
  (derived tables, RANK() OVER) runs unchanged on SQLite >= 3.25.

KEY TABLES:
  locations: id, name
  roles:     id, name, billable
  people:    id, name, salary, location_id, role_id, manager_id

INDEXES:
  - idx_people_location: location averages and maxima
  - idx_people_role:     role joins
  - idx_people_manager:  direct-report counts and manager averages

CONNECTIONS:
  The pool is pinned to one connection. SQLite allows a single writer, and
  ":memory:" databases are private to a connection, so a second connection
  would see an empty schema.

USAGE:
  store, err := sqlite.New("./data/people.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  reports := store.Reports()

MIGRATION:
  Schema is auto-created on New(). For production, use a proper migration
  tool with versioned migrations.

SEE ALSO:
  - store/sqlstore/store.go: Directory implementation
  - store/postgres/postgres.go: PostgreSQL variant
*/
package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/people-reports/store/sqlstore"
)

// Store is a sqlstore.Store on SQLite.
type Store struct {
	*sqlstore.Store
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		billable BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		salary NUMERIC NOT NULL DEFAULT 0 CHECK (salary >= 0),
		location_id INTEGER NOT NULL REFERENCES locations(id),
		role_id INTEGER NOT NULL REFERENCES roles(id),
		manager_id INTEGER REFERENCES people(id),
		CHECK (manager_id IS NULL OR manager_id <> id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_people_location ON people(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_people_role ON people(role_id)`,
	`CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id)`,
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{Store: sqlstore.New(db, sq.Question), db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
