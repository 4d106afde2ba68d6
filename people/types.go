/*
types.go - Core types for the people reporting domain

PURPOSE:
  Defines the three persisted entities (Person, Location, Role) and the
  identifier types used to reference them. Everything else in the module
  (stores, reports, API) speaks these types.

RELATIONSHIPS:
  Person -> Location   many-to-one, required
  Person -> Role       many-to-one, required
  Person -> Person     many-to-one via ManagerID, optional ("manager")
                       inverse is the manager's direct reports ("employees")

SALARY:
  Salaries use decimal.Decimal so sums and averages never pick up
  floating-point noise. The SQL column is NUMERIC.

LIFECYCLE:
  Records are created and read. There is no update path.

SEE ALSO:
  - errors.go: Sentinel and validation errors
  - store.go: Directory and Reporter interfaces
*/
package people

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PersonID identifies a person.
type PersonID int64

// LocationID identifies a location.
type LocationID int64

// RoleID identifies a role.
type RoleID int64

// =============================================================================
// ENTITIES
// =============================================================================

// Location is a place people work from.
type Location struct {
	ID   LocationID `db:"id" json:"id"`
	Name string     `db:"name" json:"name"`
}

// Role is a job role. Billable roles are charged to clients.
type Role struct {
	ID       RoleID `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Billable bool   `db:"billable" json:"billable"`
}

// Person is an employee with a salary, a location, a role and an optional
// manager.
type Person struct {
	ID         PersonID        `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Salary     decimal.Decimal `db:"salary" json:"salary"`
	LocationID LocationID      `db:"location_id" json:"location_id"`
	RoleID     RoleID          `db:"role_id" json:"role_id"`
	ManagerID  *PersonID       `db:"manager_id" json:"manager_id,omitempty"`
}

// HasManager reports whether the person reports to someone.
func (p Person) HasManager() bool {
	return p.ManagerID != nil
}

// ReportsTo reports whether id is this person's direct manager.
func (p Person) ReportsTo(id PersonID) bool {
	return p.ManagerID != nil && *p.ManagerID == id
}

// ManagedBy returns a pointer suitable for Person.ManagerID.
func ManagedBy(id PersonID) *PersonID {
	return &id
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the invariants that can be verified without storage.
// Referential checks (location, role, manager existence) belong to the store.
func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrNameRequired}
	}
	if p.Salary.IsNegative() {
		return &ValidationError{Field: "salary", Err: ErrNegativeSalary}
	}
	if p.ID != 0 && p.ReportsTo(p.ID) {
		return &ValidationError{Field: "manager_id", Err: ErrSelfManagement}
	}
	return nil
}

// Validate checks that the location is named.
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrNameRequired}
	}
	return nil
}

// Validate checks that the role is named.
func (r Role) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrNameRequired}
	}
	return nil
}
