package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/store/sqlite"
)

func TestNew_ForeignKeysEnforced(t *testing.T) {
	// GIVEN: A fresh database
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	// WHEN: Bypassing the store and inserting a dangling location reference
	_, err = store.DB().Exec(`INSERT INTO people (name, salary, location_id, role_id) VALUES ('x', 1, 42, 42)`)

	// THEN: The schema rejects it
	assert.Error(t, err)
}

func TestNew_SalaryAndSelfManagementChecks(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	db := store.DB()

	_, err = db.Exec(`INSERT INTO locations (id, name) VALUES (1, 'HQ')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO roles (id, name, billable) VALUES (1, 'Staff', 1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO people (name, salary, location_id, role_id) VALUES ('neg', -1, 1, 1)`)
	assert.Error(t, err, "negative salary")

	_, err = db.Exec(`INSERT INTO people (id, name, salary, location_id, role_id) VALUES (5, 'self', 1, 1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE people SET manager_id = 5 WHERE id = 5`)
	assert.Error(t, err, "self management")
}

func TestNew_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "people.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	loc, err := store.SaveLocation(ctx, people.Location{Name: "HQ"})
	require.NoError(t, err)
	role, err := store.SaveRole(ctx, people.Role{Name: "Staff"})
	require.NoError(t, err)
	_, err = store.SavePerson(ctx, people.Person{Name: "Ada", Salary: decimal.NewFromInt(1), LocationID: loc.ID, RoleID: role.ID})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs the migration again against the existing schema.
	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ada", all[0].Name)
}
