/*
queries.go - SQL shape of every canned report

PURPOSE:
  One pure function per report, each returning a squirrel SelectBuilder with
  a fixed structure. Nothing here touches a database, so the generated SQL
  can be asserted directly in tests.

DERIVED TABLES:
  Per-group aggregates (average salary per location, average report salary
  per manager, salary rank) are computed once in a derived table aliased
  "salaries" and joined back to people. The comparison therefore uses one
  consistent aggregate snapshot instead of a per-row correlated sub-select.

PLACEHOLDERS:
  Builders use squirrel's default "?" placeholders. Reports applies the
  dialect's PlaceholderFormat right before ToSql, so PostgreSQL gets $1..$n.

SEE ALSO:
  - reports.go: Executes these builders
*/
package reporting

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

const (
	peopleTable = "people"

	// derivedAlias names every aggregate derived table.
	derivedAlias = "salaries"

	// DefaultTopRank is the last salary rank kept by the top-earners report.
	DefaultTopRank = 3

	// AverageScale is the number of decimal places reported averages are
	// rounded to. SQLite computes AVG as REAL and PostgreSQL as NUMERIC, so
	// rounding gives every backend the same answer.
	AverageScale = 2
)

// personColumns selects a full people row, in people.Person field order.
var personColumns = []string{
	"people.id",
	"people.name",
	"people.salary",
	"people.location_id",
	"people.role_id",
	"people.manager_id",
}

// Ranking is the window function used to rank salaries.
type Ranking string

const (
	// Rank leaves gaps after ties (1, 1, 3).
	Rank Ranking = "RANK"
	// DenseRank does not leave gaps after ties (1, 1, 2).
	DenseRank Ranking = "DENSE_RANK"
)

// PersonColumns returns the qualified column list for a full people row.
func PersonColumns() []string {
	out := make([]string, len(personColumns))
	copy(out, personColumns)
	return out
}

// ParseRanking accepts "rank" or "dense_rank" in any case.
func ParseRanking(s string) (Ranking, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rank":
		return Rank, nil
	case "dense_rank", "dense-rank":
		return DenseRank, nil
	default:
		return "", fmt.Errorf("unknown ranking %q, expected rank or dense_rank", s)
	}
}

// RoundAverage rounds a reported average to AverageScale places, half away
// from zero.
func RoundAverage(d decimal.Decimal) decimal.Decimal {
	return d.Round(AverageScale)
}

// joinDerived joins sub as the "salaries" derived table using the given ON
// condition.
func joinDerived(b sq.SelectBuilder, sub sq.SelectBuilder, on string) sq.SelectBuilder {
	return b.JoinClause(
		sub.Prefix("JOIN (").Suffix(fmt.Sprintf(") %s ON %s", derivedAlias, on)),
	)
}

// AverageSalaryQuery: SELECT AVG(salary) over everyone.
func AverageSalaryQuery() sq.SelectBuilder {
	return sq.Select("AVG(people.salary)").From(peopleTable)
}

// NonBillableSalariesQuery sums salaries of people whose role is not
// billable. COALESCE turns the empty-set NULL into 0.
func NonBillableSalariesQuery() sq.SelectBuilder {
	return sq.Select("COALESCE(SUM(people.salary), 0)").
		From(peopleTable).
		Join("roles ON roles.id = people.role_id").
		Where(sq.Eq{"roles.billable": false})
}

// AverageSalaryByRoleQuery averages salary per role name.
func AverageSalaryByRoleQuery() sq.SelectBuilder {
	return sq.Select("roles.name", "AVG(people.salary) AS average_salary").
		From(peopleTable).
		Join("roles ON roles.id = people.role_id").
		GroupBy("roles.name").
		OrderBy("roles.name")
}

// EmployeeCountQuery counts direct reports per person name. The LEFT JOIN
// keeps people without reports (count 0).
func EmployeeCountQuery() sq.SelectBuilder {
	return sq.Select("people.name", "COUNT(employees.id) AS employee_count").
		From(peopleTable).
		LeftJoin("people employees ON employees.manager_id = people.id").
		GroupBy("people.name").
		OrderBy("people.name")
}

// locationAverages is the per-location average salary derived table.
func locationAverages() sq.SelectBuilder {
	return sq.Select("location_id", "AVG(salary) AS average").
		From(peopleTable).
		GroupBy("location_id")
}

// WithLowerThanAverageSalariesAtLocationQuery keeps people paid strictly
// below their location's average.
func WithLowerThanAverageSalariesAtLocationQuery() sq.SelectBuilder {
	b := sq.Select(personColumns...).From(peopleTable)
	b = joinDerived(b, locationAverages(), "salaries.location_id = people.location_id")
	return b.
		Where("people.salary < salaries.average").
		OrderBy("people.id")
}

// salaryRanks is the derived table ranking everyone by salary, highest first.
func salaryRanks(ranking Ranking) sq.SelectBuilder {
	if ranking == "" {
		ranking = Rank
	}
	return sq.Select("id", fmt.Sprintf("%s() OVER (ORDER BY salary DESC) AS salary_rank", ranking)).
		From(peopleTable)
}

// HighestSalariedOrderedByNameQuery keeps ranks 1..top and sorts by name.
// Ties share a rank, so the result can hold more than top rows.
func HighestSalariedOrderedByNameQuery(ranking Ranking, top int) sq.SelectBuilder {
	if top <= 0 {
		top = DefaultTopRank
	}
	b := sq.Select(personColumns...).From(peopleTable)
	b = joinDerived(b, salaryRanks(ranking), "salaries.id = people.id")
	return b.
		Where(sq.LtOrEq{"salaries.salary_rank": top}).
		OrderBy("people.name", "people.id")
}

// MaximumSalaryByLocationQuery takes the highest salary per location ID.
func MaximumSalaryByLocationQuery() sq.SelectBuilder {
	return sq.Select("people.location_id", "MAX(people.salary) AS maximum_salary").
		From(peopleTable).
		GroupBy("people.location_id").
		OrderBy("people.location_id")
}

// managerAverages is the per-manager average report salary derived table.
func managerAverages() sq.SelectBuilder {
	return sq.Select("manager_id", "AVG(salary) AS average_employee_salary").
		From(peopleTable).
		Where(sq.NotEq{"manager_id": nil}).
		GroupBy("manager_id")
}

// ManagersByAverageSalaryDifferenceQuery orders managers by how much more
// they earn than their reports on average. The inner join drops people
// without reports.
func ManagersByAverageSalaryDifferenceQuery() sq.SelectBuilder {
	b := sq.Select(personColumns...).From(peopleTable)
	b = joinDerived(b, managerAverages(), "salaries.manager_id = people.id")
	return b.OrderBy(
		"(people.salary - salaries.average_employee_salary) DESC",
		"people.id",
	)
}
