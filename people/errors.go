/*
errors.go - Error types for the people domain

PURPOSE:
  Sentinels for lookups and create-time invariant violations. The reporting
  queries themselves define no errors of their own: storage failures are
  returned as-is (wrapped with %w) and empty data yields empty results.

USAGE:
    if errors.Is(err, people.ErrManagerNotFound) {
        ...
    }

    var verr *people.ValidationError
    if errors.As(err, &verr) {
        log.Printf("bad field %s", verr.Field)
    }
*/
package people

import (
	"errors"
	"fmt"
)

var (
	// ErrPersonNotFound is returned when a person id does not exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrLocationNotFound is returned when a location id does not exist.
	ErrLocationNotFound = errors.New("location not found")

	// ErrRoleNotFound is returned when a role id does not exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrManagerNotFound is returned when a person names a manager that does
	// not exist.
	ErrManagerNotFound = errors.New("manager not found")

	// ErrSelfManagement is returned when a person is their own manager.
	ErrSelfManagement = errors.New("person cannot manage themselves")

	// ErrNegativeSalary is returned for salaries below zero.
	ErrNegativeSalary = errors.New("salary must not be negative")

	// ErrNameRequired is returned when a record has a blank name.
	ErrNameRequired = errors.New("name is required")

	// ErrUnknownReport is returned when a report name is not in the catalog.
	ErrUnknownReport = errors.New("unknown report")
)

// ValidationError ties an invariant violation to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
