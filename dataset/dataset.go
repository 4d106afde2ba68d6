/*
Package dataset loads people, locations and roles from YAML.

PURPOSE:
  Fixtures and demo data. Records reference each other by name instead of
  ID so files stay readable, and Load resolves the names while inserting
  through any people.Directory.

FORMAT:
  name: org-chart
  description: Small company with two offices
  locations:
    - name: London
  roles:
    - name: Engineer
      billable: true
  people:
    - name: Ada
      ref: ada            # optional, defaults to name
      salary: "120000"
      location: London
      role: Engineer
      manager: grace      # ref (or name) of another person

ORDER:
  People are inserted in file order, except that a manager is always
  inserted before their reports. Unknown references, ambiguous manager
  references and management cycles are rejected before anything is written.

SEE ALSO:
  - scenarios.go: Embedded scenario files
*/
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/people-reports/people"
)

var (
	ErrUnknownReference   = errors.New("unknown reference")
	ErrAmbiguousReference = errors.New("ambiguous reference")
	ErrManagementCycle    = errors.New("management cycle")
)

// File is a parsed dataset.
type File struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Locations   []LocationRecord `yaml:"locations"`
	Roles       []RoleRecord     `yaml:"roles"`
	People      []PersonRecord   `yaml:"people"`
}

type LocationRecord struct {
	Name string `yaml:"name"`
}

type RoleRecord struct {
	Name     string `yaml:"name"`
	Billable bool   `yaml:"billable"`
}

// PersonRecord is a person with name references. Salary is a decimal string.
type PersonRecord struct {
	Name     string `yaml:"name"`
	Ref      string `yaml:"ref"`
	Salary   string `yaml:"salary"`
	Location string `yaml:"location"`
	Role     string `yaml:"role"`
	Manager  string `yaml:"manager"`
}

// Key is how other records refer to this person.
func (r PersonRecord) Key() string {
	if r.Ref != "" {
		return r.Ref
	}
	return r.Name
}

// Loaded holds the stored records with their assigned IDs.
type Loaded struct {
	Locations map[string]people.Location
	Roles     map[string]people.Role
	// People is in file order.
	People []people.Person

	keys []string
}

// Person returns the first loaded person with the given ref or name.
func (l *Loaded) Person(key string) (people.Person, bool) {
	for i, k := range l.keys {
		if k == key {
			return l.People[i], true
		}
	}
	return people.Person{}, false
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes and checks a dataset.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if _, err := f.insertOrder(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseFile reads a dataset from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// insertOrder resolves every reference and returns the indexes of People in
// the order they can be inserted.
func (f *File) insertOrder() ([]int, error) {
	locations := make(map[string]bool, len(f.Locations))
	for _, l := range f.Locations {
		if locations[l.Name] {
			return nil, fmt.Errorf("location %q: %w", l.Name, ErrAmbiguousReference)
		}
		locations[l.Name] = true
	}
	roles := make(map[string]bool, len(f.Roles))
	for _, r := range f.Roles {
		if roles[r.Name] {
			return nil, fmt.Errorf("role %q: %w", r.Name, ErrAmbiguousReference)
		}
		roles[r.Name] = true
	}

	byKey := make(map[string][]int, len(f.People))
	for i, p := range f.People {
		byKey[p.Key()] = append(byKey[p.Key()], i)
	}

	managerOf := make([]int, len(f.People))
	for i, p := range f.People {
		if !locations[p.Location] {
			return nil, fmt.Errorf("person %q: location %q: %w", p.Name, p.Location, ErrUnknownReference)
		}
		if !roles[p.Role] {
			return nil, fmt.Errorf("person %q: role %q: %w", p.Name, p.Role, ErrUnknownReference)
		}
		if _, err := decimal.NewFromString(strings.TrimSpace(p.Salary)); err != nil {
			return nil, fmt.Errorf("person %q: salary %q: %w", p.Name, p.Salary, err)
		}

		managerOf[i] = -1
		if p.Manager == "" {
			continue
		}
		switch matches := byKey[p.Manager]; len(matches) {
		case 0:
			return nil, fmt.Errorf("person %q: manager %q: %w", p.Name, p.Manager, ErrUnknownReference)
		case 1:
			managerOf[i] = matches[0]
		default:
			return nil, fmt.Errorf("person %q: manager %q: %w", p.Name, p.Manager, ErrAmbiguousReference)
		}
	}

	// Repeated passes in file order; each pass places everyone whose manager
	// is already placed.
	placed := make([]bool, len(f.People))
	order := make([]int, 0, len(f.People))
	for len(order) < len(f.People) {
		progress := false
		for i := range f.People {
			if placed[i] {
				continue
			}
			if m := managerOf[i]; m >= 0 && !placed[m] {
				continue
			}
			placed[i] = true
			order = append(order, i)
			progress = true
		}
		if !progress {
			for i := range f.People {
				if !placed[i] {
					return nil, fmt.Errorf("person %q: %w", f.People[i].Name, ErrManagementCycle)
				}
			}
		}
	}
	return order, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load inserts the dataset into dir.
func (f *File) Load(ctx context.Context, dir people.Directory) (*Loaded, error) {
	order, err := f.insertOrder()
	if err != nil {
		return nil, err
	}

	out := &Loaded{
		Locations: make(map[string]people.Location, len(f.Locations)),
		Roles:     make(map[string]people.Role, len(f.Roles)),
		People:    make([]people.Person, len(f.People)),
		keys:      make([]string, len(f.People)),
	}
	for i, rec := range f.People {
		out.keys[i] = rec.Key()
	}

	for _, rec := range f.Locations {
		l, err := dir.SaveLocation(ctx, people.Location{Name: rec.Name})
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", rec.Name, err)
		}
		out.Locations[rec.Name] = l
	}
	for _, rec := range f.Roles {
		r, err := dir.SaveRole(ctx, people.Role{Name: rec.Name, Billable: rec.Billable})
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", rec.Name, err)
		}
		out.Roles[rec.Name] = r
	}

	ids := make(map[string]people.PersonID, len(f.People))
	for _, i := range order {
		rec := f.People[i]
		p := people.Person{
			Name:       rec.Name,
			Salary:     decimal.RequireFromString(strings.TrimSpace(rec.Salary)),
			LocationID: out.Locations[rec.Location].ID,
			RoleID:     out.Roles[rec.Role].ID,
		}
		if rec.Manager != "" {
			id := ids[rec.Manager]
			p.ManagerID = &id
		}

		saved, err := dir.SavePerson(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", rec.Name, err)
		}
		out.People[i] = saved
		ids[rec.Key()] = saved.ID
	}
	return out, nil
}
