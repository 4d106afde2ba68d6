/*
reports.go - SQL implementation of people.Reporter

PURPOSE:
  Runs the builders from queries.go against a SQL connection and hydrates
  the results into domain types. One statement per report, no composition
  between reports, no state between calls.

ERRORS:
  There is no error taxonomy here. Driver errors are wrapped with the report
  name using %w and returned; errors.Is against the driver error still
  works. Empty data is never an error.

AVERAGES:
  Reported averages are rounded to AverageScale places. Comparisons against
  an average (lower-than-location-average, manager differences) use the
  database's unrounded value.

DIALECTS:
  The same SQL runs on SQLite (>= 3.25 for window functions) and PostgreSQL.
  Only the placeholder format differs; pass WithPlaceholder(sq.Dollar) for
  PostgreSQL.

SEE ALSO:
  - queries.go: Query shapes
  - options.go: Configuration
  - metrics.go: Prometheus instrumentation
*/
package reporting

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/people-reports/people"
)

// Reports answers the canned reports with SQL.
type Reports struct {
	db          sqlx.QueryerContext
	placeholder sq.PlaceholderFormat
	ranking     Ranking
	topRank     int
	log         zerolog.Logger
	metrics     *Metrics
}

var _ people.Reporter = (*Reports)(nil)

// New returns Reports reading through db. db is typically a *sqlx.DB but a
// *sqlx.Tx works too.
func New(db sqlx.QueryerContext, opts ...Option) *Reports {
	r := &Reports{
		db:          db,
		placeholder: sq.Question,
		ranking:     Rank,
		topRank:     DefaultTopRank,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// =============================================================================
// REPORTS
// =============================================================================

// AverageSalary implements people.Reporter.
func (r *Reports) AverageSalary(ctx context.Context) (decimal.NullDecimal, error) {
	var avg decimal.NullDecimal
	err := r.run(ReportAverageSalary, AverageSalaryQuery(), func(query string, args []any) error {
		return r.db.QueryRowxContext(ctx, query, args...).Scan(&avg)
	})
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if avg.Valid {
		avg.Decimal = RoundAverage(avg.Decimal)
	}
	return avg, nil
}

// NonBillableSalaries implements people.Reporter.
func (r *Reports) NonBillableSalaries(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.run(ReportNonBillableSalaries, NonBillableSalariesQuery(), func(query string, args []any) error {
		return r.db.QueryRowxContext(ctx, query, args...).Scan(&sum)
	})
	return sum, err
}

// AverageSalaryByRole implements people.Reporter.
func (r *Reports) AverageSalaryByRole(ctx context.Context) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal)
	err := r.run(ReportAverageSalaryByRole, AverageSalaryByRoleQuery(), func(query string, args []any) error {
		return r.scanPairs(ctx, query, args, func(rows *sqlx.Rows) error {
			var (
				role string
				avg  decimal.Decimal
			)
			if err := rows.Scan(&role, &avg); err != nil {
				return err
			}
			result[role] = RoundAverage(avg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmployeeCount implements people.Reporter.
func (r *Reports) EmployeeCount(ctx context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	err := r.run(ReportEmployeeCount, EmployeeCountQuery(), func(query string, args []any) error {
		return r.scanPairs(ctx, query, args, func(rows *sqlx.Rows) error {
			var (
				name  string
				count int64
			)
			if err := rows.Scan(&name, &count); err != nil {
				return err
			}
			result[name] = count
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WithLowerThanAverageSalariesAtLocation implements people.Reporter.
func (r *Reports) WithLowerThanAverageSalariesAtLocation(ctx context.Context) ([]people.Person, error) {
	return r.selectPeople(ctx, ReportLowerThanLocationAverage, WithLowerThanAverageSalariesAtLocationQuery())
}

// HighestSalariedOrderedByName implements people.Reporter.
func (r *Reports) HighestSalariedOrderedByName(ctx context.Context) ([]people.Person, error) {
	return r.selectPeople(ctx, ReportHighestSalaried, HighestSalariedOrderedByNameQuery(r.ranking, r.topRank))
}

// MaximumSalaryByLocation implements people.Reporter.
func (r *Reports) MaximumSalaryByLocation(ctx context.Context) (map[people.LocationID]decimal.Decimal, error) {
	result := make(map[people.LocationID]decimal.Decimal)
	err := r.run(ReportMaximumSalaryByLocation, MaximumSalaryByLocationQuery(), func(query string, args []any) error {
		return r.scanPairs(ctx, query, args, func(rows *sqlx.Rows) error {
			var (
				location people.LocationID
				highest  decimal.Decimal
			)
			if err := rows.Scan(&location, &highest); err != nil {
				return err
			}
			result[location] = highest
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ManagersByAverageSalaryDifference implements people.Reporter.
func (r *Reports) ManagersByAverageSalaryDifference(ctx context.Context) ([]people.Person, error) {
	return r.selectPeople(ctx, ReportManagersBySalaryDifference, ManagersByAverageSalaryDifferenceQuery())
}

// =============================================================================
// EXECUTION HELPERS
// =============================================================================

// run builds b for the configured dialect, executes it through exec and
// records timing, logs and metrics under the report name.
func (r *Reports) run(report string, b sq.SelectBuilder, exec func(query string, args []any) error) error {
	query, args, err := b.PlaceholderFormat(r.placeholder).ToSql()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", report, err)
	}

	start := time.Now()
	err = exec(query, args)
	elapsed := time.Since(start)
	r.metrics.observe(report, elapsed, err)

	if err != nil {
		r.log.Error().Err(err).Str("report", report).Str("sql", query).Msg("report query failed")
		return fmt.Errorf("%s: %w", report, err)
	}

	r.log.Debug().Str("report", report).Str("sql", query).Dur("elapsed", elapsed).Msg("report query")
	return nil
}

func (r *Reports) scanPairs(ctx context.Context, query string, args []any, scan func(rows *sqlx.Rows) error) error {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Reports) selectPeople(ctx context.Context, report string, b sq.SelectBuilder) ([]people.Person, error) {
	result := []people.Person{}
	err := r.run(report, b, func(query string, args []any) error {
		return sqlx.SelectContext(ctx, r.db, &result, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
