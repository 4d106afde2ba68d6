package dataset

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// ErrUnknownScenario is returned by Scenario for names with no embedded file.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenarios returns every embedded dataset, sorted by name.
func Scenarios() ([]*File, error) {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}

	out := make([]*File, 0, len(entries))
	for _, e := range entries {
		f, err := readScenario(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Scenario returns the embedded dataset with the given name.
func Scenario(name string) (*File, error) {
	f, err := readScenario(name + ".yaml")
	if errors.Is(err, errMissingScenario) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return f, err
}

var errMissingScenario = errors.New("missing scenario file")

func readScenario(file string) (*File, error) {
	data, err := scenarioFS.ReadFile(path.Join("scenarios", file))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMissingScenario, err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", file, err)
	}
	return f, nil
}
