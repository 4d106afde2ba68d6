/*
Package memory is an in-process people.Directory and people.Reporter.

PURPOSE:
  Same behaviour as the SQL backends without a database: used by tests to
  cross-check the SQL reports and by the server's "-driver=memory" mode.

AGGREGATES:
  Per-group aggregates (location averages, manager report averages, salary
  ranks) are materialized once into maps, then each person is compared
  against the map in a second pass.

ORDERING:
  Matches reporting/queries.go exactly:
    lower-than-location-average:    by id
    highest-salaried:               by name, then id
    managers-by-salary-difference:  by difference desc, then id
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/reporting"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	people    map[people.PersonID]people.Person
	locations map[people.LocationID]people.Location
	roles     map[people.RoleID]people.Role
	nextID    int64

	ranking reporting.Ranking
	topRank int
}

var (
	_ people.Directory = (*Store)(nil)
	_ people.Reporter  = (*Store)(nil)
)

// Option configures the in-memory reports.
type Option func(*Store)

// WithRanking selects RANK or DENSE_RANK semantics for the top earners.
func WithRanking(r reporting.Ranking) Option {
	return func(s *Store) { s.ranking = r }
}

// WithTopRank sets the last salary rank kept by the top earners report.
func WithTopRank(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.topRank = n
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		people:    make(map[people.PersonID]people.Person),
		locations: make(map[people.LocationID]people.Location),
		roles:     make(map[people.RoleID]people.Role),
		ranking:   reporting.Rank,
		topRank:   reporting.DefaultTopRank,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) SaveLocation(_ context.Context, l people.Location) (people.Location, error) {
	if err := l.Validate(); err != nil {
		return people.Location{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l.ID = people.LocationID(s.nextID)
	s.locations[l.ID] = l
	return l, nil
}

func (s *Store) SaveRole(_ context.Context, r people.Role) (people.Role, error) {
	if err := r.Validate(); err != nil {
		return people.Role{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = people.RoleID(s.nextID)
	s.roles[r.ID] = r
	return r, nil
}

// SavePerson checks every reference before assigning an ID.
func (s *Store) SavePerson(_ context.Context, p people.Person) (people.Person, error) {
	if err := p.Validate(); err != nil {
		return people.Person{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[p.LocationID]; !ok {
		return people.Person{}, people.ErrLocationNotFound
	}
	if _, ok := s.roles[p.RoleID]; !ok {
		return people.Person{}, people.ErrRoleNotFound
	}
	if p.ManagerID != nil {
		if _, ok := s.people[*p.ManagerID]; !ok {
			return people.Person{}, people.ErrManagerNotFound
		}
		id := *p.ManagerID
		p.ManagerID = &id
	}

	s.nextID++
	p.ID = people.PersonID(s.nextID)
	s.people[p.ID] = p
	return p, nil
}

func (s *Store) GetPerson(_ context.Context, id people.PersonID) (people.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.people[id]
	if !ok {
		return people.Person{}, people.ErrPersonNotFound
	}
	return p, nil
}

func (s *Store) ListPeople(_ context.Context) ([]people.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedPeople(), nil
}

func (s *Store) ListLocations(_ context.Context) ([]people.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]people.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListRoles(_ context.Context) ([]people.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]people.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Reset clears all data. IDs keep counting up, like a SQL sequence.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.people = make(map[people.PersonID]people.Person)
	s.locations = make(map[people.LocationID]people.Location)
	s.roles = make(map[people.RoleID]people.Role)
	return nil
}

// =============================================================================
// REPORTS
// =============================================================================

func (s *Store) AverageSalary(_ context.Context) (decimal.NullDecimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPeople()
	if len(all) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(reporting.RoundAverage(average(all))), nil
}

func (s *Store) NonBillableSalaries(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, p := range s.people {
		if role, ok := s.roles[p.RoleID]; ok && !role.Billable {
			sum = sum.Add(p.Salary)
		}
	}
	return sum, nil
}

func (s *Store) AverageSalaryByRole(_ context.Context) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string][]people.Person)
	for _, p := range s.sortedPeople() {
		role, ok := s.roles[p.RoleID]
		if !ok {
			continue
		}
		groups[role.Name] = append(groups[role.Name], p)
	}

	result := make(map[string]decimal.Decimal, len(groups))
	for name, members := range groups {
		result[name] = reporting.RoundAverage(average(members))
	}
	return result, nil
}

// EmployeeCount groups by name, so namesakes share one entry.
func (s *Store) EmployeeCount(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make(map[people.PersonID]int64)
	for _, p := range s.people {
		if p.ManagerID != nil {
			reports[*p.ManagerID]++
		}
	}

	result := make(map[string]int64)
	for _, p := range s.people {
		result[p.Name] += reports[p.ID]
	}
	return result, nil
}

func (s *Store) WithLowerThanAverageSalariesAtLocation(_ context.Context) ([]people.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPeople()

	byLocation := make(map[people.LocationID][]people.Person)
	for _, p := range all {
		byLocation[p.LocationID] = append(byLocation[p.LocationID], p)
	}
	averages := make(map[people.LocationID]decimal.Decimal, len(byLocation))
	for loc, members := range byLocation {
		averages[loc] = average(members)
	}

	result := []people.Person{}
	for _, p := range all {
		if p.Salary.LessThan(averages[p.LocationID]) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) HighestSalariedOrderedByName(_ context.Context) ([]people.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPeople()
	ranks := salaryRanks(all, s.ranking)

	result := []people.Person{}
	for _, p := range all {
		if ranks[p.ID] <= s.topRank {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) MaximumSalaryByLocation(_ context.Context) (map[people.LocationID]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[people.LocationID]decimal.Decimal)
	for _, p := range s.people {
		if highest, ok := result[p.LocationID]; !ok || p.Salary.GreaterThan(highest) {
			result[p.LocationID] = p.Salary
		}
	}
	return result, nil
}

// ManagersByAverageSalaryDifference skips people without reports.
func (s *Store) ManagersByAverageSalaryDifference(_ context.Context) ([]people.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPeople()

	reports := make(map[people.PersonID][]people.Person)
	for _, p := range all {
		if p.ManagerID != nil {
			reports[*p.ManagerID] = append(reports[*p.ManagerID], p)
		}
	}

	differences := make(map[people.PersonID]decimal.Decimal, len(reports))
	result := []people.Person{}
	for _, p := range all {
		team, ok := reports[p.ID]
		if !ok {
			continue
		}
		differences[p.ID] = p.Salary.Sub(average(team))
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		di, dj := differences[result[i].ID], differences[result[j].ID]
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sortedPeople returns a snapshot ordered by ID. Caller holds the lock.
func (s *Store) sortedPeople() []people.Person {
	out := make([]people.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func average(ps []people.Person) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Salary)
	}
	return sum.Div(decimal.NewFromInt(int64(len(ps))))
}

// salaryRanks ranks everyone by salary, highest first. RANK counts the
// people paid more; DENSE_RANK counts the distinct salaries above.
func salaryRanks(all []people.Person, ranking reporting.Ranking) map[people.PersonID]int {
	salaries := make([]decimal.Decimal, len(all))
	for i, p := range all {
		salaries[i] = p.Salary
	}
	sort.Slice(salaries, func(i, j int) bool { return salaries[i].GreaterThan(salaries[j]) })

	ranks := make(map[people.PersonID]int, len(all))
	for _, p := range all {
		higher, distinct := 0, 0
		for i, salary := range salaries {
			if !salary.GreaterThan(p.Salary) {
				break
			}
			higher++
			if i == 0 || !salary.Equal(salaries[i-1]) {
				distinct++
			}
		}
		if ranking == reporting.DenseRank {
			ranks[p.ID] = distinct + 1
		} else {
			ranks[p.ID] = higher + 1
		}
	}
	return ranks
}
