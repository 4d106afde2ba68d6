/*
catalog.go - Named index of every report

PURPOSE:
  Gives each report a stable kebab-case name and a runner that works over
  any people.Reporter, so the HTTP API and the CLI can expose reports by
  name without a switch statement each.

NAMES:
  average-salary                       AverageSalary
  non-billable-salaries                NonBillableSalaries
  average-salary-by-role               AverageSalaryByRole
  employee-count                       EmployeeCount
  lower-than-location-average          WithLowerThanAverageSalariesAtLocation
  highest-salaried                     HighestSalariedOrderedByName
  maximum-salary-by-location           MaximumSalaryByLocation
  managers-by-salary-difference        ManagersByAverageSalaryDifference
*/
package reporting

import (
	"context"
	"fmt"

	"github.com/warp/people-reports/people"
)

const (
	ReportAverageSalary              = "average-salary"
	ReportNonBillableSalaries        = "non-billable-salaries"
	ReportAverageSalaryByRole        = "average-salary-by-role"
	ReportEmployeeCount              = "employee-count"
	ReportLowerThanLocationAverage   = "lower-than-location-average"
	ReportHighestSalaried            = "highest-salaried"
	ReportMaximumSalaryByLocation    = "maximum-salary-by-location"
	ReportManagersBySalaryDifference = "managers-by-salary-difference"
)

// Report is one catalog entry.
type Report struct {
	Name        string
	Description string
	Run         func(ctx context.Context, r people.Reporter) (any, error)
}

var catalog = []Report{
	{
		Name:        ReportAverageSalary,
		Description: "Mean salary across all people (null when there are none)",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.AverageSalary(ctx)
		},
	},
	{
		Name:        ReportNonBillableSalaries,
		Description: "Total salary of people in non-billable roles",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.NonBillableSalaries(ctx)
		},
	},
	{
		Name:        ReportAverageSalaryByRole,
		Description: "Mean salary per role name",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.AverageSalaryByRole(ctx)
		},
	},
	{
		Name:        ReportEmployeeCount,
		Description: "Direct reports per person name, including people with none",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.EmployeeCount(ctx)
		},
	},
	{
		Name:        ReportLowerThanLocationAverage,
		Description: "People paid strictly below their location's average",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.WithLowerThanAverageSalariesAtLocation(ctx)
		},
	},
	{
		Name:        ReportHighestSalaried,
		Description: "Top salary ranks, ordered by name",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.HighestSalariedOrderedByName(ctx)
		},
	},
	{
		Name:        ReportMaximumSalaryByLocation,
		Description: "Highest salary per location ID",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.MaximumSalaryByLocation(ctx)
		},
	},
	{
		Name:        ReportManagersBySalaryDifference,
		Description: "Managers ordered by own salary minus their reports' mean salary",
		Run: func(ctx context.Context, r people.Reporter) (any, error) {
			return r.ManagersByAverageSalaryDifference(ctx)
		},
	},
}

// Catalog returns every report in a fixed order.
func Catalog() []Report {
	out := make([]Report, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a report by name.
func Lookup(name string) (Report, error) {
	for _, r := range catalog {
		if r.Name == name {
			return r, nil
		}
	}
	return Report{}, fmt.Errorf("%w: %q", people.ErrUnknownReport, name)
}
