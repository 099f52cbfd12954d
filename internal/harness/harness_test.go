package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/store"
)

func intPtr(n int) *int { return &n }

func TestRun_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Cases, len(scenario.Cases))

			AssertGolden(t, scenario, result)
		})
	}
}

func TestRun_ReportsMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Records: []store.Entry{
			{Scope: "a", Name: "x"},
			{Scope: "a", Name: "y"},
		},
		Cases: []Case{
			{Name: "wrong ids", Expect: Expect{IDs: []int64{2, 1}}},
			{Name: "expected error", Options: Query{Where: "name=x"}, Expect: Expect{Error: "UNKNOWN_PROPERTY"}},
			{Name: "unexpected error", Options: Query{Where: "nope=1"}},
			{Name: "right", Options: Query{Where: "name=y"}, Expect: Expect{IDs: []int64{2}}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 4)

	assert.False(t, result.Cases[0].Pass)
	assert.Equal(t, []int64{1, 2}, result.Cases[0].IDs)
	assert.False(t, result.Cases[1].Pass)
	assert.False(t, result.Cases[2].Pass)
	assert.Equal(t, "UNKNOWN_PROPERTY", result.Cases[2].Error)
	assert.True(t, result.Cases[3].Pass)

	assert.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "wrong ids: expected ids [2 1], got [1 2]")
}

func TestRun_NoRecords(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "queries over nothing",
		Cases: []Case{
			{Name: "all", Options: Query{Limit: intPtr(5)}, Expect: Expect{IDs: []int64{}}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadDefaultOrder(t *testing.T) {
	scenario := &Scenario{
		Name:         "bad-order",
		Description:  "default order names nothing",
		DefaultOrder: "missing",
		Cases:        []Case{{Name: "any"}},
	}

	_, err := Run(context.Background(), scenario)
	assert.Error(t, err)
}

func TestRun_NumberingAvoidsExplicitIDs(t *testing.T) {
	scenario := &Scenario{
		Name:        "numbering",
		Description: "an unnumbered record precedes an explicit id 1",
		Records: []store.Entry{
			{Name: "first"},
			{ID: 1, Name: "second"},
		},
		Cases: []Case{{Name: "any", Expect: Expect{IDs: []int64{2, 1}}}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []int64{2, 1}, result.Cases[0].IDs)
}
