package compiler

import (
	"reflect"
	"strings"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/clause"
	"github.com/roach88/sieve/internal/ir"
)

// Condition is a statement bound to a catalog property.
type Condition struct {
	Property catalog.Property
	Op       ir.Op
	Value    any    // canonical literal; the raw string for ir.OpContains
	Raw      string // literal as written
}

// Holds reports whether record satisfies the condition.
// An absent value (nil record or nil embedded pointer) never satisfies it.
func (c Condition) Holds(record reflect.Value) bool {
	v, ok := c.Property.Value(record)
	if !ok {
		return false
	}
	if c.Op == ir.OpContains {
		return strings.Contains(v.(string), c.Value.(string))
	}
	return c.Op.Holds(c.Property.Kind.Compare(v, c.Value))
}

// OrderKey is one sort key bound to a catalog property.
type OrderKey struct {
	Property catalog.Property
	Desc     bool
}

// BindFilter splits a where clause and binds every statement to e.
func BindFilter(e *catalog.Entry, where string) ([]Condition, error) {
	stmts, err := clause.SplitFilter(where)
	if err != nil {
		return nil, err
	}

	conds := make([]Condition, 0, len(stmts))
	for _, stmt := range stmts {
		prop, err := e.Find(stmt.Property)
		if err != nil {
			return nil, err
		}
		value, err := prop.Kind.Parse(stmt.Value)
		if err != nil {
			if qe, ok := ir.AsQueryError(err); ok {
				qe = qe.WithProperty(prop.Name)
				qe.Statement = stmt.Text
				return nil, qe
			}
			return nil, err
		}
		conds = append(conds, Condition{
			Property: prop,
			Op:       stmt.Op,
			Value:    value,
			Raw:      stmt.Value,
		})
	}
	return conds, nil
}

// BindSearch splits a search clause and binds every statement to e.
// Only string properties can be searched.
func BindSearch(e *catalog.Entry, search string) ([]Condition, error) {
	stmts, err := clause.SplitSearch(search)
	if err != nil {
		return nil, err
	}

	conds := make([]Condition, 0, len(stmts))
	for _, stmt := range stmts {
		prop, err := e.Find(stmt.Property)
		if err != nil {
			return nil, err
		}
		if prop.Kind != ir.KindString {
			return nil, ir.NewSearchTargetError(prop.Name, prop.Kind)
		}
		conds = append(conds, Condition{
			Property: prop,
			Op:       ir.OpContains,
			Value:    stmt.Value,
			Raw:      stmt.Value,
		})
	}
	return conds, nil
}

// BindSort resolves an order-by clause against e.
//
// desc applies to every key: the clause grammar has no per-key direction.
// Keys of unsupported kinds fail because they have no ordering.
func BindSort(e *catalog.Entry, orderBy string, desc bool) ([]OrderKey, error) {
	names, err := clause.SplitOrderBy(orderBy)
	if err != nil {
		return nil, err
	}

	keys := make([]OrderKey, 0, len(names))
	for _, name := range names {
		prop, err := e.Find(name)
		if err != nil {
			return nil, err
		}
		if !prop.Kind.Supported() {
			return nil, ir.NewUnsupportedPropertyTypeError(prop.Name, prop.Kind)
		}
		keys = append(keys, OrderKey{Property: prop, Desc: desc})
	}
	return keys, nil
}
