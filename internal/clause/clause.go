// Package clause splits raw clause strings into statements.
//
// The language is a flat, comma-separated conjunction. A filter statement is
// "property<op>value" with op one of >=, <=, !=, >, <, =; a search statement
// is "property~value"; an order-by clause is a list of property names. No
// quoting or escaping exists, so values cannot contain "," or an operator
// that precedes their own in detection order.
//
// The package is purely syntactic: it knows nothing about record types.
// Resolving names and coercing values is the compiler's job.
package clause

import (
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

const (
	statementSep = ","
	searchSep    = "~"
)

// Statement is one comma-delimited unit of a clause.
type Statement struct {
	Text     string // the statement as written
	Property string // property name, not yet resolved
	Op       ir.Op
	Value    string // raw literal, not yet coerced
}

// SplitFilter splits a where clause into filter statements.
// An empty clause yields no statements and no error.
func SplitFilter(where string) ([]Statement, error) {
	if where == "" {
		return nil, nil
	}

	parts := strings.Split(where, statementSep)
	stmts := make([]Statement, 0, len(parts))
	for _, text := range parts {
		stmt, err := splitFilterStatement(text)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// splitFilterStatement detects the operator by substring presence in
// ir.FilterOps order and splits on its first occurrence.
func splitFilterStatement(text string) (Statement, error) {
	if text == "" {
		return Statement{}, ir.NewSyntaxError(text, "missing property name")
	}

	for _, op := range ir.FilterOps {
		sym := op.Symbol()
		if !strings.Contains(text, sym) {
			continue
		}
		prop, value, _ := strings.Cut(text, sym)
		if prop == "" {
			return Statement{}, ir.NewSyntaxError(text, "missing property name")
		}
		if value == "" {
			return Statement{}, ir.NewSyntaxError(text, "missing value after '"+sym+"'")
		}
		return Statement{Text: text, Property: prop, Op: op, Value: value}, nil
	}

	return Statement{}, ir.NewSyntaxError(text,
		"it must contain =, !=, >, >=, <, or <= between a property name and a value")
}

// SplitSearch splits a search clause into substring statements.
// An empty clause yields no statements and no error.
func SplitSearch(search string) ([]Statement, error) {
	if search == "" {
		return nil, nil
	}

	parts := strings.Split(search, statementSep)
	stmts := make([]Statement, 0, len(parts))
	for _, text := range parts {
		tuple := strings.Split(text, searchSep)
		if len(tuple) != 2 || tuple[0] == "" {
			return nil, ir.NewSyntaxError(text,
				"a search must have the form property~value with a valid property name")
		}
		if tuple[1] == "" {
			return nil, ir.NewMissingValueError(text, tuple[0])
		}
		stmts = append(stmts, Statement{
			Text:     text,
			Property: tuple[0],
			Op:       ir.OpContains,
			Value:    tuple[1],
		})
	}
	return stmts, nil
}

// SplitOrderBy splits an order-by clause into property names, primary key first.
// An empty clause yields no names and no error.
func SplitOrderBy(orderBy string) ([]string, error) {
	if orderBy == "" {
		return nil, nil
	}

	names := strings.Split(orderBy, statementSep)
	for _, name := range names {
		if name == "" {
			return nil, ir.NewSyntaxError(orderBy, "missing property name")
		}
	}
	return names, nil
}
