package memory_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/people-reports/dataset"
	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/reporting"
	"github.com/warp/people-reports/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func loadScenario(t *testing.T, name string, opts ...memory.Option) (*memory.Store, *dataset.Loaded) {
	f, err := dataset.Scenario(name)
	require.NoError(t, err)

	store := memory.New(opts...)
	loaded, err := f.Load(context.Background(), store)
	require.NoError(t, err)
	return store, loaded
}

func seedBasics(t *testing.T, store *memory.Store) (people.Location, people.Role) {
	ctx := context.Background()
	loc, err := store.SaveLocation(ctx, people.Location{Name: "HQ"})
	require.NoError(t, err)
	role, err := store.SaveRole(ctx, people.Role{Name: "Staff", Billable: true})
	require.NoError(t, err)
	return loc, role
}

func names(ps []people.Person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestSavePerson_MissingReferences(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	loc, role := seedBasics(t, store)
	ghost := people.PersonID(999)

	tests := []struct {
		name    string
		person  people.Person
		wantErr error
	}{
		{"location", people.Person{Name: "A", LocationID: 999, RoleID: role.ID}, people.ErrLocationNotFound},
		{"role", people.Person{Name: "A", LocationID: loc.ID, RoleID: 999}, people.ErrRoleNotFound},
		{"manager", people.Person{Name: "A", LocationID: loc.ID, RoleID: role.ID, ManagerID: &ghost}, people.ErrManagerNotFound},
		{"negative salary", people.Person{Name: "A", Salary: decimal.NewFromInt(-1), LocationID: loc.ID, RoleID: role.ID}, people.ErrNegativeSalary},
		{"blank name", people.Person{Name: "  ", LocationID: loc.ID, RoleID: role.ID}, people.ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SavePerson(ctx, tt.person)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	all, err := store.ListPeople(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected people are not stored")
}

func TestGetPerson(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	loc, role := seedBasics(t, store)

	saved, err := store.SavePerson(ctx, people.Person{Name: "Ada", Salary: decimal.NewFromInt(10), LocationID: loc.ID, RoleID: role.ID})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	got, err := store.GetPerson(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = store.GetPerson(ctx, saved.ID+100)
	assert.ErrorIs(t, err, people.ErrPersonNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store, _ := loadScenario(t, "org-chart")

	require.NoError(t, store.Reset(ctx))

	all, err := store.ListPeople(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	locations, err := store.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)
	avg, err := store.AverageSalary(ctx)
	require.NoError(t, err)
	assert.False(t, avg.Valid)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	loc, role := seedBasics(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := store.SavePerson(ctx, people.Person{Name: "p", Salary: decimal.NewFromInt(int64(i)), LocationID: loc.ID, RoleID: role.ID})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := store.HighestSalariedOrderedByName(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestReports_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("average-salary", func(t *testing.T) {
		store, _ := loadScenario(t, "average-salary")
		avg, err := store.AverageSalary(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(35_000).Equal(avg.Decimal))
	})

	t.Run("non-billable", func(t *testing.T) {
		store, _ := loadScenario(t, "non-billable")
		sum, err := store.NonBillableSalaries(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(60_000).Equal(sum))
	})

	t.Run("average-by-role", func(t *testing.T) {
		store, _ := loadScenario(t, "average-by-role")
		result, err := store.AverageSalaryByRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Designer": "50000", "Researcher": "45000"}, map[string]string{
			"Designer":   result["Designer"].String(),
			"Researcher": result["Researcher"].String(),
		})
		assert.Len(t, result, 2)
	})

	t.Run("employee-count", func(t *testing.T) {
		store, _ := loadScenario(t, "employee-count")
		result, err := store.EmployeeCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{
			"Employee A": 0, "Employee B1": 0, "Employee B2": 0,
			"Manager A": 1, "Manager B": 2,
		}, result)
	})

	t.Run("below-location-average", func(t *testing.T) {
		store, _ := loadScenario(t, "below-location-average")
		result, err := store.WithLowerThanAverageSalariesAtLocation(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mona"}, names(result))
	})

	t.Run("top-earners", func(t *testing.T) {
		store, _ := loadScenario(t, "top-earners")
		result, err := store.HighestSalariedOrderedByName(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"One", "Three", "Two"}, names(result))
	})

	t.Run("max-by-location", func(t *testing.T) {
		store, loaded := loadScenario(t, "max-by-location")
		result, err := store.MaximumSalaryByLocation(ctx)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.True(t, decimal.NewFromInt(50_000).Equal(result[loaded.Locations["highest-50000"].ID]))
		assert.True(t, decimal.NewFromInt(60_000).Equal(result[loaded.Locations["highest-60000"].ID]))
	})

	t.Run("manager-difference", func(t *testing.T) {
		store, _ := loadScenario(t, "manager-difference")
		result, err := store.ManagersByAverageSalaryDifference(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"difference-20000", "difference-10000", "difference--5000"}, names(result))

		// Each manager is named after its own salary minus its reports' average
		all, err := store.ListPeople(ctx)
		require.NoError(t, err)
		for _, manager := range result {
			sum, count := decimal.Zero, int64(0)
			for _, p := range all {
				if p.ReportsTo(manager.ID) {
					sum = sum.Add(p.Salary)
					count++
				}
			}
			require.Positive(t, count, manager.Name)

			expected, err := decimal.NewFromString(strings.TrimPrefix(manager.Name, "difference-"))
			require.NoError(t, err)
			actual := manager.Salary.Sub(sum.Div(decimal.NewFromInt(count)))
			assert.True(t, expected.Equal(actual), "%s: difference is %s", manager.Name, actual)
		}
	})
}

func TestAverages_RoundedToCents(t *testing.T) {
	// GIVEN: Three people averaging 133.333...
	ctx := context.Background()
	store := memory.New()
	loc, role := seedBasics(t, store)
	for _, salary := range []int64{100, 100, 200} {
		_, err := store.SavePerson(ctx, people.Person{Name: "P", Salary: decimal.NewFromInt(salary), LocationID: loc.ID, RoleID: role.ID})
		require.NoError(t, err)
	}

	// WHEN: Averaging overall and by role
	avg, err := store.AverageSalary(ctx)
	require.NoError(t, err)
	byRole, err := store.AverageSalaryByRole(ctx)
	require.NoError(t, err)

	// THEN: Both are rounded to two places, matching the SQL reports
	assert.Equal(t, "133.33", avg.Decimal.String())
	assert.Equal(t, "133.33", byRole["Staff"].String())
}

func TestReports_Empty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	avg, err := store.AverageSalary(ctx)
	require.NoError(t, err)
	assert.False(t, avg.Valid)

	sum, err := store.NonBillableSalaries(ctx)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	byRole, err := store.AverageSalaryByRole(ctx)
	require.NoError(t, err)
	assert.Empty(t, byRole)

	low, err := store.WithLowerThanAverageSalariesAtLocation(ctx)
	require.NoError(t, err)
	assert.NotNil(t, low)
	assert.Empty(t, low)

	top, err := store.HighestSalariedOrderedByName(ctx)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestHighestSalaried_Ranking(t *testing.T) {
	ctx := context.Background()
	salaries := map[string]int64{"Bea": 100, "Ann": 100, "Cid": 80, "Dot": 70, "Eve": 60}

	for _, tt := range []struct {
		ranking reporting.Ranking
		top     int
		want    []string
	}{
		{reporting.Rank, 3, []string{"Ann", "Bea", "Cid"}},
		{reporting.DenseRank, 3, []string{"Ann", "Bea", "Cid", "Dot"}},
		{reporting.Rank, 1, []string{"Ann", "Bea"}},
		{reporting.DenseRank, 2, []string{"Ann", "Bea", "Cid"}},
	} {
		t.Run(string(tt.ranking), func(t *testing.T) {
			store := memory.New(memory.WithRanking(tt.ranking), memory.WithTopRank(tt.top))
			loc, role := seedBasics(t, store)
			for _, name := range []string{"Bea", "Ann", "Cid", "Dot", "Eve"} {
				_, err := store.SavePerson(ctx, people.Person{
					Name: name, Salary: decimal.NewFromInt(salaries[name]), LocationID: loc.ID, RoleID: role.ID,
				})
				require.NoError(t, err)
			}

			result, err := store.HighestSalariedOrderedByName(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(result))
		})
	}
}
