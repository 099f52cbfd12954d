// Package querysql compiles QueryIR to parameterized SQL for SQLite.
package querysql

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// identPattern restricts table and column names to plain identifiers.
// Names come from catalog metadata, never from clause text, but they are
// interpolated so they are still checked.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries end their ORDER BY with the tie-breaker column so
// rows equal on every requested key keep insertion order.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	// TieBreaker is the final ascending ORDER BY column.
	TieBreaker string
}

// NewSQLCompiler creates a new SQLCompiler that breaks ties on rowid.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		TieBreaker: "rowid",
	}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompileCount converts a Select into a COUNT(*) over its filter,
// ignoring order and window.
func (c *SQLCompiler) CompileCount(q queryir.Select) (string, []any, error) {
	if err := checkIdent(q.From); err != nil {
		return "", nil, err
	}
	whereClause, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.From, whereClause), params, nil
}

// compileSelect compiles a queryir.Select to SQL.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if err := checkIdent(q.From); err != nil {
		return "", nil, err
	}

	whereClause, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}

	orderByClause, err := c.compileOrderBy(q.OrderBy)
	if err != nil {
		return "", nil, err
	}

	// LIMIT -1 is SQLite's "no limit"
	limit := q.Limit
	if limit < 0 {
		limit = -1
	}
	params = append(params, int64(limit), int64(q.Offset))

	sql := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s LIMIT ? OFFSET ?",
		q.From,
		whereClause,
		orderByClause)

	return sql, params, nil
}

func (c *SQLCompiler) compileWhere(filter queryir.Predicate) (string, []any, error) {
	if filter == nil {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(filter)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// compileOrderBy renders the requested keys followed by the tie-breaker.
func (c *SQLCompiler) compileOrderBy(keys []queryir.OrderKey) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		if err := checkIdent(key.Field); err != nil {
			return "", err
		}
		if key.Desc {
			parts = append(parts, key.Field+" DESC")
		} else {
			parts = append(parts, key.Field+" ASC")
		}
	}
	if c.TieBreaker != "" {
		if err := checkIdent(c.TieBreaker); err != nil {
			return "", err
		}
		parts = append(parts, c.TieBreaker+" ASC")
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("query has no order keys and no tie-breaker")
	}
	return strings.Join(parts, ", "), nil
}

// compilePredicate compiles a queryir.Predicate to SQL WHERE clause fragment.
// Returns (sql, params, error).
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Compare:
		return c.compileCompare(pred)
	case *queryir.Compare:
		return c.compileCompare(*pred)
	case queryir.Contains:
		return c.compileContains(pred)
	case *queryir.Contains:
		return c.compileContains(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileCompare compiles a Compare predicate to "field <op> ?".
func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (string, []any, error) {
	if err := checkIdent(cmp.Field); err != nil {
		return "", nil, err
	}
	if cmp.Op == ir.OpContains {
		return "", nil, fmt.Errorf("field %s: use Contains for substring tests", cmp.Field)
	}

	param, err := valueToParam(cmp.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", cmp.Field, err)
	}

	sql := fmt.Sprintf("%s %s ?", cmp.Field, sqlOperator(cmp.Op))
	return sql, []any{param}, nil
}

// compileContains compiles a Contains predicate.
// instr() is case-sensitive, unlike LIKE for ASCII letters.
func (c *SQLCompiler) compileContains(cs queryir.Contains) (string, []any, error) {
	if err := checkIdent(cs.Field); err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("instr(%s, ?) > 0", cs.Field)
	return sql, []any{cs.Substring}, nil
}

// compileAnd compiles an And predicate to conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

func sqlOperator(op ir.Op) string {
	if op == ir.OpNe {
		return "<>"
	}
	return op.Symbol()
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}

// valueToParam converts a canonical literal to a SQLite parameter.
//
// Times are normalized to UTC so their text form orders chronologically,
// durations are stored as nanoseconds, characters as one-rune strings and
// decimals as REAL.
func valueToParam(v any) (any, error) {
	switch val := v.(type) {
	case string, int64, uint64, float64, bool:
		return val, nil
	case rune:
		return string(val), nil
	case *apd.Decimal:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("decimal %s: %w", val, err)
		}
		return f, nil
	case time.Time:
		return val.UTC(), nil
	case time.Duration:
		return int64(val), nil
	case nil:
		return nil, fmt.Errorf("nil value cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
