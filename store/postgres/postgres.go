// Package postgres provides a PostgreSQL-backed people directory and reporter.
//
// The connection goes through pgx's database/sql adapter so the shared
// sqlstore and reporting code run unchanged with "$n" placeholders. Query
// tracing is routed to zerolog via pgx's tracelog.
package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/warp/people-reports/store/sqlstore"
)

const pingTimeout = 5 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		billable BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		salary NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (salary >= 0),
		location_id BIGINT NOT NULL REFERENCES locations(id),
		role_id BIGINT NOT NULL REFERENCES roles(id),
		manager_id BIGINT REFERENCES people(id),
		CHECK (manager_id IS NULL OR manager_id <> id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_people_location ON people(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_people_role ON people(role_id)`,
	`CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id)`,
}

// Store is a sqlstore.Store on PostgreSQL.
type Store struct {
	*sqlstore.Store
	db *sqlx.DB
}

// New connects to databaseURL, verifies the connection and creates the
// schema. SQL is traced to log at debug level.
func New(ctx context.Context, databaseURL string, log zerolog.Logger) (*Store, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.Tracer = &tracelog.TraceLog{
		Logger:   pgxzero.NewLogger(log.With().Str("component", "pgx").Logger()),
		LogLevel: tracelog.LogLevelDebug,
	}

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Info().Msg("connected to the database")
	return &Store{Store: sqlstore.New(db, sq.Dollar), db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
