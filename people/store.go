/*
store.go - Storage and reporting interfaces

PURPOSE:
  Directory is the create/read surface for people, locations and roles.
  Reporter is the fixed set of canned aggregate reports.

IMPLEMENTATIONS:
  store/sqlstore: SQL (SQLite, PostgreSQL) Directory
  reporting:      SQL Reporter built from squirrel query chains
  store/memory:   In-process Directory + Reporter, used by tests and demos

SEE ALSO:
  - reporting/reports.go: SQL report implementation
  - store/memory/memory.go: In-memory implementation
*/
package people

import (
	"context"

	"github.com/shopspring/decimal"
)

// Directory persists and reads people, locations and roles.
type Directory interface {
	// SaveLocation inserts a location and returns it with its assigned ID.
	SaveLocation(ctx context.Context, l Location) (Location, error)
	// SaveRole inserts a role and returns it with its assigned ID.
	SaveRole(ctx context.Context, r Role) (Role, error)
	// SavePerson inserts a person and returns it with its assigned ID.
	// The location, role and manager (if any) must already exist.
	SavePerson(ctx context.Context, p Person) (Person, error)

	GetPerson(ctx context.Context, id PersonID) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	ListLocations(ctx context.Context) ([]Location, error)
	ListRoles(ctx context.Context) ([]Role, error)

	// Reset removes every record. Demo and test use only.
	Reset(ctx context.Context) error
}

// Reporter computes the canned salary and headcount reports.
//
// All reports are read-only and idempotent. Empty data produces empty or
// zero results rather than errors.
type Reporter interface {
	// AverageSalary is the mean salary over everyone, rounded to two decimal
	// places. Invalid when there are no people.
	AverageSalary(ctx context.Context) (decimal.NullDecimal, error)

	// NonBillableSalaries sums the salaries of people in non-billable roles.
	NonBillableSalaries(ctx context.Context) (decimal.Decimal, error)

	// AverageSalaryByRole maps role name to mean salary, rounded to two
	// decimal places.
	AverageSalaryByRole(ctx context.Context) (map[string]decimal.Decimal, error)

	// EmployeeCount maps each person's name to their number of direct
	// reports. People sharing a name are counted together.
	EmployeeCount(ctx context.Context) (map[string]int64, error)

	// WithLowerThanAverageSalariesAtLocation returns people paid strictly
	// less than the average at their own location.
	WithLowerThanAverageSalariesAtLocation(ctx context.Context) ([]Person, error)

	// HighestSalariedOrderedByName returns the people ranked in the top
	// salary positions, sorted by name. Ties share a rank.
	HighestSalariedOrderedByName(ctx context.Context) ([]Person, error)

	// MaximumSalaryByLocation maps location ID to the highest salary there.
	MaximumSalaryByLocation(ctx context.Context) (map[LocationID]decimal.Decimal, error)

	// ManagersByAverageSalaryDifference returns managers with at least one
	// report, ordered by (own salary - mean report salary) descending.
	ManagersByAverageSalaryDifference(ctx context.Context) ([]Person, error)
}
