/*
Package sqlstore implements people.Directory on top of database/sql.

PURPOSE:
  Shared create/read code for every SQL backend. Backends (store/sqlite,
  store/postgres) open the connection, create the schema and pick the
  placeholder format; everything else lives here.

INSERTS:
  Inserts use "RETURNING id" (SQLite >= 3.35, PostgreSQL) so both backends
  read the generated ID the same way.

REFERENTIAL CHECKS:
  SavePerson verifies the location, role and manager inside the insert's
  transaction and returns people.ErrLocationNotFound, ErrRoleNotFound or
  ErrManagerNotFound. The schema's foreign keys back this up.

SEE ALSO:
  - store/sqlite/sqlite.go
  - store/postgres/postgres.go
  - reporting/reports.go: Reports bound to the same connection
*/
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/reporting"
)

// Store is a SQL-backed people.Directory.
type Store struct {
	db          *sqlx.DB
	placeholder sq.PlaceholderFormat
}

var _ people.Directory = (*Store)(nil)

// New wraps an open connection. placeholder must match the driver.
func New(db *sqlx.DB, placeholder sq.PlaceholderFormat) *Store {
	return &Store{db: db, placeholder: placeholder}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reports returns a SQL Reporter reading through the same connection.
func (s *Store) Reports(opts ...reporting.Option) *reporting.Reports {
	all := append([]reporting.Option{reporting.WithPlaceholder(s.placeholder)}, opts...)
	return reporting.New(s.db, all...)
}

func (s *Store) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(s.placeholder)
}

// =============================================================================
// WRITES
// =============================================================================

// SaveLocation inserts a location.
func (s *Store) SaveLocation(ctx context.Context, l people.Location) (people.Location, error) {
	if err := l.Validate(); err != nil {
		return people.Location{}, err
	}

	query, args, err := s.builder().Insert("locations").
		Columns("name").
		Values(l.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return people.Location{}, err
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&l.ID); err != nil {
		return people.Location{}, fmt.Errorf("failed to save location: %w", err)
	}
	return l, nil
}

// SaveRole inserts a role.
func (s *Store) SaveRole(ctx context.Context, r people.Role) (people.Role, error) {
	if err := r.Validate(); err != nil {
		return people.Role{}, err
	}

	query, args, err := s.builder().Insert("roles").
		Columns("name", "billable").
		Values(r.Name, r.Billable).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return people.Role{}, err
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&r.ID); err != nil {
		return people.Role{}, fmt.Errorf("failed to save role: %w", err)
	}
	return r, nil
}

// SavePerson inserts a person after checking every reference exists.
func (s *Store) SavePerson(ctx context.Context, p people.Person) (people.Person, error) {
	if err := p.Validate(); err != nil {
		return people.Person{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return people.Person{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.mustExist(ctx, tx, "locations", int64(p.LocationID), people.ErrLocationNotFound); err != nil {
		return people.Person{}, err
	}
	if err := s.mustExist(ctx, tx, "roles", int64(p.RoleID), people.ErrRoleNotFound); err != nil {
		return people.Person{}, err
	}
	if p.ManagerID != nil {
		if err := s.mustExist(ctx, tx, "people", int64(*p.ManagerID), people.ErrManagerNotFound); err != nil {
			return people.Person{}, err
		}
	}

	query, args, err := s.builder().Insert("people").
		Columns("name", "salary", "location_id", "role_id", "manager_id").
		Values(p.Name, p.Salary, int64(p.LocationID), int64(p.RoleID), nullableID(p.ManagerID)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return people.Person{}, err
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return people.Person{}, fmt.Errorf("failed to save person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return people.Person{}, fmt.Errorf("failed to commit person: %w", err)
	}
	return p, nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"people", "roles", "locations"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id people.PersonID) (people.Person, error) {
	query, args, err := s.builder().Select(reporting.PersonColumns()...).
		From("people").
		Where(sq.Eq{"people.id": int64(id)}).
		ToSql()
	if err != nil {
		return people.Person{}, err
	}

	var p people.Person
	err = sqlx.GetContext(ctx, s.db, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return people.Person{}, people.ErrPersonNotFound
	}
	if err != nil {
		return people.Person{}, err
	}
	return p, nil
}

// ListPeople returns everyone ordered by ID.
func (s *Store) ListPeople(ctx context.Context) ([]people.Person, error) {
	out := []people.Person{}
	err := s.selectAll(ctx, &out, s.builder().Select(reporting.PersonColumns()...).From("people").OrderBy("people.id"))
	return out, err
}

// ListLocations returns every location ordered by ID.
func (s *Store) ListLocations(ctx context.Context) ([]people.Location, error) {
	out := []people.Location{}
	err := s.selectAll(ctx, &out, s.builder().Select("id", "name").From("locations").OrderBy("id"))
	return out, err
}

// ListRoles returns every role ordered by ID.
func (s *Store) ListRoles(ctx context.Context) ([]people.Role, error) {
	out := []people.Role{}
	err := s.selectAll(ctx, &out, s.builder().Select("id", "name", "billable").From("roles").OrderBy("id"))
	return out, err
}

// Helper functions

func (s *Store) selectAll(ctx context.Context, dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, s.db, dest, query, args...)
}

func (s *Store) mustExist(ctx context.Context, q sqlx.QueryerContext, table string, id int64, notFound error) error {
	query, args, err := s.builder().Select("1").From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	var one int
	err = q.QueryRowxContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func nullableID(id *people.PersonID) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}
