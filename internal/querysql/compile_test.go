package querysql

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From: "entries",
		Filter: queryir.Compare{
			Field: "username",
			Op:    ir.OpEq,
			Value: "bob",
		},
		Limit: 200,
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM entries WHERE username = ? ORDER BY rowid ASC LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []any{"bob", int64(200), int64(0)}, params)
}

func TestCompile_SimpleSelectPointer(t *testing.T) {
	compiler := NewSQLCompiler()

	query := &queryir.Select{
		From:   "entries",
		Filter: &queryir.Compare{Field: "id", Op: ir.OpGt, Value: int64(10)},
		Limit:  5,
		Offset: 10,
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE id > ?")
	assert.Equal(t, []any{int64(10), int64(5), int64(10)}, params)
}

func TestCompile_Operators(t *testing.T) {
	compiler := NewSQLCompiler()

	tests := []struct {
		op   ir.Op
		want string
	}{
		{ir.OpEq, "id = ?"},
		{ir.OpNe, "id <> ?"},
		{ir.OpGt, "id > ?"},
		{ir.OpGe, "id >= ?"},
		{ir.OpLt, "id < ?"},
		{ir.OpLe, "id <= ?"},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			sql, _, err := compiler.Compile(queryir.Select{
				From:   "entries",
				Filter: queryir.Compare{Field: "id", Op: tt.op, Value: int64(1)},
			})
			require.NoError(t, err)
			assert.Contains(t, sql, "WHERE "+tt.want+" ORDER BY")
		})
	}
}

func TestCompile_TieBreakerAlwaysLast(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name  string
		query queryir.Select
		want  string
	}{
		{
			name:  "no keys",
			query: queryir.Select{From: "entries"},
			want:  "ORDER BY rowid ASC",
		},
		{
			name:  "one key desc",
			query: queryir.Select{From: "entries", OrderBy: []queryir.OrderKey{{Field: "timestamp", Desc: true}}},
			want:  "ORDER BY timestamp DESC, rowid ASC",
		},
		{
			name: "two keys asc",
			query: queryir.Select{From: "entries", OrderBy: []queryir.OrderKey{
				{Field: "severity"}, {Field: "username"},
			}},
			want: "ORDER BY severity ASC, username ASC, rowid ASC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(tc.query)
			require.NoError(t, err)
			assert.Contains(t, sql, tc.want)
		})
	}
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	compiler := NewSQLCompiler()

	// Use a value that would be dangerous if interpolated
	dangerousValue := "'; DROP TABLE entries; --"

	query := queryir.Select{
		From: "entries",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Field: "username", Op: ir.OpEq, Value: dangerousValue},
			queryir.Contains{Field: "description", Substring: dangerousValue},
		}},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.NotContains(t, sql, dangerousValue,
		"Value MUST NOT be interpolated into SQL (SQL injection risk)")
	assert.Equal(t, dangerousValue, params[0])
	assert.Equal(t, dangerousValue, params[1])
}

func TestCompile_RejectsBadIdentifiers(t *testing.T) {
	compiler := NewSQLCompiler()

	bad := []queryir.Select{
		{From: "entries; DROP TABLE x"},
		{From: "entries", Filter: queryir.Compare{Field: "id = 1 OR 1", Op: ir.OpEq, Value: int64(1)}},
		{From: "entries", Filter: queryir.Contains{Field: "name)", Substring: "x"}},
		{From: "entries", OrderBy: []queryir.OrderKey{{Field: "id DESC --"}}},
	}

	for _, q := range bad {
		_, _, err := compiler.Compile(q)
		assert.Error(t, err)
	}
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler()

	_, _, err := compiler.Compile(nil)
	assert.Error(t, err)

	_, _, err = compiler.Compile(queryir.Select{
		From:   "entries",
		Filter: queryir.Compare{Field: "name", Op: ir.OpContains, Value: "x"},
	})
	assert.Error(t, err)

	_, _, err = compiler.Compile(queryir.Select{
		From:   "entries",
		Filter: queryir.Compare{Field: "tags", Op: ir.OpEq, Value: []string{"x"}},
	})
	assert.Error(t, err)

	noOrder := &SQLCompiler{}
	_, _, err = noOrder.Compile(queryir.Select{From: "entries"})
	assert.Error(t, err)
}

func TestValueToParam(t *testing.T) {
	dec, _, err := apd.NewFromString("12.5")
	require.NoError(t, err)
	cet := time.FixedZone("CET", 3600)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "x", "x"},
		{"int", int64(-3), int64(-3)},
		{"uint", uint64(3), uint64(3)},
		{"float", 1.5, 1.5},
		{"bool", true, true},
		{"char", 'é', "é"},
		{"decimal", dec, 12.5},
		{"time", time.Date(2024, 1, 1, 13, 0, 0, 0, cet), time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"duration", 2 * time.Second, int64(2_000_000_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := valueToParam(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileCount(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.CompileCount(queryir.Select{
		From:    "entries",
		Filter:  queryir.Compare{Field: "severity", Op: ir.OpGe, Value: int64(3)},
		OrderBy: []queryir.OrderKey{{Field: "timestamp"}},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM entries WHERE severity >= ?", sql)
	assert.Equal(t, []any{int64(3)}, params)
}

func TestCompile_Golden(t *testing.T) {
	compiler := NewSQLCompiler()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name  string
		query queryir.Select
	}{
		{
			name: "filter_search_sort",
			query: queryir.Select{
				From: "entries",
				Filter: queryir.Conjoin(
					queryir.Compare{Field: "id", Op: ir.OpGt, Value: int64(10)},
					queryir.Compare{Field: "username", Op: ir.OpNe, Value: "bob"},
					queryir.Contains{Field: "description", Substring: "login"},
				),
				OrderBy: []queryir.OrderKey{{Field: "timestamp", Desc: true}},
				Limit:   200,
			},
		},
		{
			name: "unlimited_multi_key",
			query: queryir.Select{
				From:    "entries",
				OrderBy: []queryir.OrderKey{{Field: "severity"}, {Field: "username"}},
				Limit:   -1,
				Offset:  20,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(tt.query)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(sql+"\n"))
		})
	}
}
