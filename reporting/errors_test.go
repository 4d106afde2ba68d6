package reporting

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/people-reports/people"
)

var errConnectionLost = errors.New("connection lost")

// personRowColumns are the result column names drivers report for
// personColumns.
var personRowColumns = []string{"id", "name", "salary", "location_id", "role_id", "manager_id"}

func newMockReports(t *testing.T, opts ...Option) (*Reports, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(sqlx.NewDb(db, "sqlmock"), opts...), mock
}

// =============================================================================
// ERROR PROPAGATION
// =============================================================================

func TestReports_StorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		report string
		prefix string
		call   func(r *Reports) error
	}{
		{ReportAverageSalary, "SELECT AVG(people.salary)", func(r *Reports) error {
			_, err := r.AverageSalary(ctx)
			return err
		}},
		{ReportNonBillableSalaries, "SELECT COALESCE(SUM(people.salary), 0)", func(r *Reports) error {
			_, err := r.NonBillableSalaries(ctx)
			return err
		}},
		{ReportAverageSalaryByRole, "SELECT roles.name", func(r *Reports) error {
			_, err := r.AverageSalaryByRole(ctx)
			return err
		}},
		{ReportEmployeeCount, "SELECT people.name", func(r *Reports) error {
			_, err := r.EmployeeCount(ctx)
			return err
		}},
		{ReportLowerThanLocationAverage, "SELECT people.id", func(r *Reports) error {
			_, err := r.WithLowerThanAverageSalariesAtLocation(ctx)
			return err
		}},
		{ReportHighestSalaried, "SELECT people.id", func(r *Reports) error {
			_, err := r.HighestSalariedOrderedByName(ctx)
			return err
		}},
		{ReportMaximumSalaryByLocation, "SELECT people.location_id", func(r *Reports) error {
			_, err := r.MaximumSalaryByLocation(ctx)
			return err
		}},
		{ReportManagersBySalaryDifference, "SELECT people.id", func(r *Reports) error {
			_, err := r.ManagersByAverageSalaryDifference(ctx)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.report, func(t *testing.T) {
			// GIVEN: A connection that fails every query
			reports, mock := newMockReports(t)
			mock.ExpectQuery(regexp.QuoteMeta(tt.prefix)).WillReturnError(errConnectionLost)

			// WHEN: Running the report
			err := tt.call(reports)

			// THEN: The driver error comes back unchanged underneath
			require.Error(t, err)
			assert.ErrorIs(t, err, errConnectionLost)
			assert.Contains(t, err.Error(), tt.report)
		})
	}
}

func TestReports_RowErrorPropagates(t *testing.T) {
	reports, mock := newMockReports(t)
	rows := sqlmock.NewRows([]string{"name", "employee_count"}).
		AddRow("Manager A", 1).
		AddRow("Manager B", 2).
		RowError(1, errConnectionLost)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(employees.id)")).WillReturnRows(rows)

	result, err := reports.EmployeeCount(context.Background())

	assert.ErrorIs(t, err, errConnectionLost)
	assert.Nil(t, result, "partial results are not returned")
}

// =============================================================================
// SCANNING
// =============================================================================

func TestReports_ScansTextDecimals(t *testing.T) {
	// GIVEN: A driver that returns NUMERIC as text, like pgx does
	reports, mock := newMockReports(t, WithPlaceholder(sq.Dollar))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY roles.name")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "average_salary"}).
			AddRow("Designer", "50000.0000000000000000").
			AddRow("Researcher", "45000.5"))

	result, err := reports.AverageSalaryByRole(context.Background())

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50000").Equal(result["Designer"]))
	assert.True(t, decimal.RequireFromString("45000.5").Equal(result["Researcher"]))
}

func TestReports_DollarPlaceholdersSentToDriver(t *testing.T) {
	reports, mock := newMockReports(t, WithPlaceholder(sq.Dollar))
	mock.ExpectQuery(regexp.QuoteMeta("salaries.salary_rank <= $1")).
		WithArgs(DefaultTopRank).
		WillReturnRows(sqlmock.NewRows(personRowColumns))

	result, err := reports.HighestSalariedOrderedByName(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestReports_NullAverage(t *testing.T) {
	reports, mock := newMockReports(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(people.salary)")).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	avg, err := reports.AverageSalary(context.Background())

	require.NoError(t, err)
	assert.False(t, avg.Valid)
}

func TestReports_NullableManagerScanned(t *testing.T) {
	reports, mock := newMockReports(t)
	mock.ExpectQuery(regexp.QuoteMeta("AVG(salary) AS average_employee_salary")).
		WillReturnRows(sqlmock.NewRows(personRowColumns).
			AddRow(int64(2), "VP", "90000", int64(1), int64(1), int64(1)).
			AddRow(int64(1), "CEO", "150000", int64(1), int64(1), nil))

	result, err := reports.ManagersByAverageSalaryDifference(context.Background())

	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].ManagerID)
	assert.Equal(t, people.PersonID(1), *result[0].ManagerID)
	assert.Nil(t, result[1].ManagerID)
}

// =============================================================================
// METRICS & LOGGING
// =============================================================================

func TestReports_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	reports, mock := newMockReports(t, WithMetrics(m))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG")).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("10"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG")).WillReturnError(errConnectionLost)

	_, err := reports.AverageSalary(context.Background())
	require.NoError(t, err)
	_, err = reports.AverageSalary(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(ReportAverageSalary)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration, "people_reports_query_duration_seconds"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(ReportAverageSalary, 0, errConnectionLost) })
}

func TestReports_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	reports, mock := newMockReports(t, WithLogger(zerolog.New(&buf)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG")).WillReturnError(errConnectionLost)

	_, _ = reports.AverageSalary(context.Background())

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"report":"average-salary"`)
	assert.Contains(t, out, `"component":"reporting"`)
	assert.Contains(t, out, "connection lost")
}
