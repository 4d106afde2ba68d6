package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "managers-by-salary-difference")

	out, err = execute(t, "list", "--scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "org-chart")
}

func TestRun_ScenarioInMemory(t *testing.T) {
	// GIVEN: The manager-difference scenario on the memory backend
	// WHEN: Running the report
	out, err := execute(t, "run", "managers-by-salary-difference", "--driver", "memory", "--scenario", "manager-difference")

	// THEN: Managers come back largest difference first
	require.NoError(t, err)
	var result struct {
		Report string `json:"report"`
		Result []struct {
			Name string `json:"name"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Result, 3)
	assert.Equal(t, "difference-20000", result.Result[0].Name)
	assert.Equal(t, "difference--5000", result.Result[2].Name)
}

func TestRun_All(t *testing.T) {
	out, err := execute(t, "run", "all", "--driver", "memory", "--scenario", "org-chart")
	require.NoError(t, err)

	var results []runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 8)
}

func TestRun_UnknownReport(t *testing.T) {
	_, err := execute(t, "run", "payroll", "--driver", "memory")
	assert.Error(t, err)
}

func TestSeed_SQLiteFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(data, []byte(`
name: tiny
locations: [{name: HQ}]
roles: [{name: Staff, billable: false}]
people:
  - {name: Ada, salary: "100", location: HQ, role: Staff}
  - {name: Bob, salary: "50", location: HQ, role: Staff, manager: Ada}
`), 0o600))
	db := filepath.Join(dir, "people.db")

	out, err := execute(t, "seed", data, "--driver", "sqlite", "--db", db)
	require.NoError(t, err)
	var seeded seedOutput
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, seedOutput{Dataset: "tiny", Locations: 1, Roles: 1, People: 2}, seeded)

	out, err = execute(t, "run", "non-billable-salaries", "--driver", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"result": "150"`)
}
