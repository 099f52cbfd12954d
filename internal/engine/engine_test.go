package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

type event struct {
	ID        int64
	Scope     string
	Name      string `db:"username"`
	Severity  int16
	Timestamp time.Time
	Tags      []string
	URI       string `query:"-"`
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func events() []event {
	return []event{
		{ID: 1, Scope: "a", Name: "alice", Severity: 2, Timestamp: base.Add(3 * time.Hour)},
		{ID: 2, Scope: "a", Name: "bob", Severity: 5, Timestamp: base.Add(1 * time.Hour)},
		{ID: 3, Scope: "b", Name: "carol", Severity: 5, Timestamp: base.Add(2 * time.Hour)},
		{ID: 4, Scope: "b", Name: "bobby", Severity: 1, Timestamp: base},
	}
}

func newEventEngine(t *testing.T) *Engine[event] {
	t.Helper()
	e, err := New[event](catalog.New(), Config{DefaultOrder: "Timestamp"})
	require.NoError(t, err)
	return e
}

func idsOf(es []event) []int64 {
	out := make([]int64, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestNew_RejectsBadDefaultOrder(t *testing.T) {
	_, err := New[event](catalog.New(), Config{DefaultOrder: "missing"})
	assert.True(t, ir.IsUnknownProperty(err))

	_, err = New[event](catalog.New(), Config{DefaultOrder: "Tags"})
	assert.True(t, ir.IsUnsupportedPropertyType(err))

	_, err = New[int](catalog.New(), Config{})
	assert.Error(t, err)
}

func TestApply_DefaultOrder(t *testing.T) {
	e := newEventEngine(t)

	testCases := []struct {
		name string
		opts Options
		want []int64
	}{
		{"empty order uses default", DefaultOptions(), []int64{4, 2, 3, 1}},
		{"default desc", Options{OrderDesc: true, Limit: MaxLimit}, []int64{1, 3, 2, 4}},
		{"default key in other case", Options{OrderBy: "TIMESTAMP", Limit: MaxLimit}, []int64{4, 2, 3, 1}},
		{"explicit key", Options{OrderBy: "name", Limit: MaxLimit}, []int64{1, 2, 4, 3}},
		{"ties keep input order", Options{OrderBy: "severity", OrderDesc: true, Limit: MaxLimit}, []int64{2, 3, 1, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Apply(events(), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, idsOf(got))
		})
	}
}

func TestApply_NoDefaultOrderKeepsInputOrder(t *testing.T) {
	e, err := New[event](catalog.New(), Config{})
	require.NoError(t, err)

	got, err := e.Apply(events(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, idsOf(got))
}

func TestApply_FilterAndSearch(t *testing.T) {
	e := newEventEngine(t)

	got, err := e.Apply(events(), Options{
		Where:  "severity>=2",
		Search: "name~bob",
		Limit:  MaxLimit,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, idsOf(got))

	got, err = e.Apply(events(), Options{Search: "name~bob", Limit: MaxLimit})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, idsOf(got))
}

func TestApply_Window(t *testing.T) {
	e := newEventEngine(t)

	testCases := []struct {
		name string
		opts Options
		want []int64
	}{
		{"offset", Options{Offset: 1, Limit: MaxLimit}, []int64{2, 3, 1}},
		{"limit", Options{Limit: 2}, []int64{4, 2}},
		{"offset and limit", Options{Offset: 1, Limit: 2}, []int64{2, 3}},
		{"offset past end", Options{Offset: 10, Limit: MaxLimit}, []int64{}},
		{"zero limit", Options{}, []int64{}},
		{"negative offset clamps", Options{Offset: -5, Limit: 1}, []int64{4}},
		{"oversized limit clamps", Options{Limit: 5000}, []int64{4, 2, 3, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Apply(events(), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, idsOf(got))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	e := newEventEngine(t)
	in := events()

	_, err := e.Apply(in, Options{OrderBy: "name", OrderDesc: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, events(), in)
}

func TestApply_Errors(t *testing.T) {
	e := newEventEngine(t)

	testCases := []struct {
		name  string
		opts  Options
		check func(error) bool
	}{
		{"bad where", Options{Where: "id"}, ir.IsInvalidClauseSyntax},
		{"bad search target", Options{Search: "severity~5"}, ir.IsUnsupportedSearchTarget},
		{"unknown sort", Options{OrderBy: "nope"}, ir.IsUnknownProperty},
		{"hidden property", Options{Where: "uri=x"}, ir.IsUnknownProperty},
		{"bad value", Options{Where: "id>ten"}, ir.IsInvalidValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Apply(events(), tc.opts)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, tc.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCompile_Reusable(t *testing.T) {
	e := newEventEngine(t)

	q, err := e.Compile(Options{Where: "scope=b", Limit: MaxLimit})
	require.NoError(t, err)

	assert.Equal(t, []int64{4, 3}, idsOf(q.Apply(events())))
	assert.Equal(t, []int64{4, 3}, idsOf(q.Apply(events())))
	assert.Len(t, q.Filter, 1)
	assert.Len(t, q.Order, 1)
	assert.Equal(t, "Timestamp", q.Order[0].Property.Name)
}

func TestPlan(t *testing.T) {
	e := newEventEngine(t)

	sel, err := e.Plan("entries", Options{
		Where:     "id>1,name!=bob",
		Search:    "name~ob",
		OrderBy:   "severity",
		OrderDesc: true,
		Offset:    -3,
		Limit:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, queryir.Select{
		From: "entries",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Field: "id", Op: ir.OpGt, Value: int64(1)},
			queryir.Compare{Field: "username", Op: ir.OpNe, Value: "bob"},
			queryir.Contains{Field: "username", Substring: "ob"},
		}},
		OrderBy: []queryir.OrderKey{{Field: "severity", Desc: true}},
		Limit:   10,
		Offset:  0,
	}, sel)
	assert.True(t, queryir.Validate(sel).Valid)
}

func TestPlan_DefaultOrderAndNoFilter(t *testing.T) {
	e := newEventEngine(t)

	sel, err := e.Plan("entries", DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, sel.Filter)
	assert.Equal(t, []queryir.OrderKey{{Field: "timestamp"}}, sel.OrderBy)
	assert.Equal(t, MaxLimit, sel.Limit)
}

func TestPlan_Error(t *testing.T) {
	e := newEventEngine(t)
	_, err := e.Plan("entries", Options{Where: "nope=1"})
	assert.True(t, ir.IsUnknownProperty(err))
}

func TestScoped(t *testing.T) {
	sel := queryir.Select{
		From:   "entries",
		Filter: queryir.Compare{Field: "id", Op: ir.OpGt, Value: int64(1)},
	}

	got := Scoped(sel, "scope", "a")
	assert.Equal(t, queryir.And{Predicates: []queryir.Predicate{
		queryir.Compare{Field: "scope", Op: ir.OpEq, Value: "a"},
		queryir.Compare{Field: "id", Op: ir.OpGt, Value: int64(1)},
	}}, got.Filter)

	unfiltered := Scoped(queryir.Select{From: "entries"}, "scope", "a")
	assert.Equal(t, queryir.Compare{Field: "scope", Op: ir.OpEq, Value: "a"}, unfiltered.Filter)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newEventEngine(t)
	done := make(chan error, 16)

	for i := range 16 {
		go func() {
			got, err := e.Apply(events(), Options{Where: fmt.Sprintf("severity>=%d", i%6), Limit: MaxLimit})
			if err == nil && len(got) > 4 {
				err = fmt.Errorf("too many rows: %d", len(got))
			}
			done <- err
		}()
	}
	for range 16 {
		require.NoError(t, <-done)
	}
}
