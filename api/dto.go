/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Request and response bodies. Requests carry validator tags and are checked
  before anything reaches the directory; responses use the domain types'
  JSON tags where they already fit.

DECIMALS:
  Salaries travel as strings ("40000.50") in both directions so no precision
  is lost to float64.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/people-reports/people"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CreateLocationRequest is the body of POST /api/locations.
type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateRoleRequest is the body of POST /api/roles.
type CreateRoleRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Billable bool   `json:"billable"`
}

// CreatePersonRequest is the body of POST /api/people.
type CreatePersonRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Salary     string `json:"salary" validate:"required,numeric"`
	LocationID int64  `json:"location_id" validate:"required,gt=0"`
	RoleID     int64  `json:"role_id" validate:"required,gt=0"`
	ManagerID  *int64 `json:"manager_id,omitempty" validate:"omitempty,gt=0"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ReportDTO describes one catalog entry.
type ReportDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReportResultDTO is the result of running one report.
type ReportResultDTO struct {
	Report string `json:"report"`
	Result any    `json:"result"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	People      int    `json:"people"`
	Locations   int    `json:"locations"`
	Roles       int    `json:"roles"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func (req CreatePersonRequest) toPerson() (people.Person, error) {
	salary, err := decimal.NewFromString(req.Salary)
	if err != nil {
		return people.Person{}, err
	}

	p := people.Person{
		Name:       req.Name,
		Salary:     salary,
		LocationID: people.LocationID(req.LocationID),
		RoleID:     people.RoleID(req.RoleID),
	}
	if req.ManagerID != nil {
		id := people.PersonID(*req.ManagerID)
		p.ManagerID = &id
	}
	return p, nil
}
