package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: parsed
description: every field
default_order: Severity
records:
  - id: 4
    scope: web
    name: alice
    description: hello
    severity: 3
    elapsed: 1m30s
    timestamp: 2024-02-03T04:05:06Z
cases:
  - name: one
    options: {where: "id=4", search: "name~al", orderby: name, orderdesc: true, offset: 1, limit: 7}
    expect: {ids: [4]}
`))
	require.NoError(t, err)

	assert.Equal(t, "Severity", s.DefaultOrder)
	require.Len(t, s.Records, 1)
	assert.Equal(t, store.Entry{
		ID:          4,
		Scope:       "web",
		Name:        "alice",
		Description: "hello",
		Severity:    3,
		Elapsed:     90 * time.Second,
		Timestamp:   time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	}, s.Records[0])

	require.Len(t, s.Cases, 1)
	assert.Equal(t, engine.Options{
		Where:     "id=4",
		Search:    "name~al",
		OrderBy:   "name",
		OrderDesc: true,
		Offset:    1,
		Limit:     7,
	}, s.Cases[0].Options.Options())
	assert.Equal(t, []int64{4}, s.Cases[0].Expect.IDs)
}

func TestQuery_DefaultLimit(t *testing.T) {
	assert.Equal(t, engine.DefaultOptions(), Query{}.Options())
	assert.Equal(t, 0, Query{Limit: intPtr(0)}.Options().Limit)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown field", "name: a\ndescription: b\ncase: []\n", "field case not found"},
		{"missing name", "description: b\ncases: [{name: x}]\n", "name is required"},
		{"missing description", "name: a\ncases: [{name: x}]\n", "description is required"},
		{"no cases", "name: a\ndescription: b\n", "cases list is required"},
		{"unnamed case", "name: a\ndescription: b\ncases: [{}]\n", "cases[0]: name is required"},
		{"duplicate case", "name: a\ndescription: b\ncases: [{name: x}, {name: x}]\n", "duplicate name"},
		{"unknown code", "name: a\ndescription: b\ncases: [{name: x, expect: {error: NOPE}}]\n", "unknown error code"},
		{"ids and error", "name: a\ndescription: b\ncases: [{name: x, expect: {error: MISSING_VALUE, ids: [1]}}]\n", "mutually exclusive"},
		{"duplicate record id", "name: a\ndescription: b\nrecords: [{id: 1}, {id: 1}]\ncases: [{name: x}]\n", "already used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStamp(t *testing.T) {
	explicit := time.Date(2020, 1, 1, 1, 0, 0, 0, time.FixedZone("X", 3600))
	in := []store.Entry{
		{Name: "a"},
		{ID: 9, Name: "b", Timestamp: explicit},
		{Name: "c"},
	}

	out := Stamp(in, testutil.NewDeterministicClock())
	require.Len(t, out, 3)

	assert.Equal(t, []int64{10, 9, 11}, EntryIDs(out), "numbering starts after the largest explicit id")
	assert.Equal(t, testutil.DefaultEpoch, out[0].Timestamp)
	assert.Equal(t, explicit.UTC(), out[1].Timestamp)
	assert.Equal(t, testutil.DefaultEpoch.Add(testutil.DefaultStep), out[2].Timestamp)
	assert.Zero(t, in[0].ID, "input must not be modified")
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
records:
  - {scope: web, name: a}
  - {scope: web, name: b}
`), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Zero(t, records[0].ID, "ids are left to the store")
	assert.Equal(t, testutil.DefaultEpoch, records[0].Timestamp)
	assert.Equal(t, testutil.DefaultEpoch.Add(testutil.DefaultStep), records[1].Timestamp)

	scenarioRecords, err := LoadRecords("testdata/scenarios/basic.yaml")
	require.NoError(t, err)
	assert.Len(t, scenarioRecords, 5)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("records: []\n"), 0o644))
	_, err = LoadRecords(empty)
	assert.Error(t, err)
}
