package queryir

import "github.com/roach88/sieve/internal/ir"

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: field <op> literal
//   - Contains: field contains substring (case-sensitive)
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents filtered, ordered, windowed access to one source.
//
// Semantics:
//
//	SELECT * FROM <from> WHERE <filter> ORDER BY <order_by> LIMIT <limit> OFFSET <offset>
//
// Example (conceptual SQL translation):
//
//	Select{
//	  From: "entries",
//	  Filter: And{Predicates: []Predicate{
//	    Compare{Field: "id", Op: ir.OpGt, Value: int64(10)},
//	    Contains{Field: "username", Substring: "bob"},
//	  }},
//	  OrderBy: []OrderKey{{Field: "timestamp", Desc: true}},
//	  Limit: 200,
//	}
//
// Translates to SQL:
//
//	SELECT * FROM entries
//	WHERE id > ? AND instr(username, ?) > 0
//	ORDER BY timestamp DESC, rowid ASC LIMIT ? OFFSET ?
//
// Limit < 0 means unlimited.
type Select struct {
	From    string     // Table/source name (e.g., "entries")
	Filter  Predicate  // WHERE conditions (nil = no filter)
	OrderBy []OrderKey // primary key first; empty = source order
	Limit   int        // maximum rows (< 0 = unlimited)
	Offset  int        // rows to skip
}

func (Select) queryNode() {}

// OrderKey is one sort key.
type OrderKey struct {
	Field string // column name
	Desc  bool
}

// Compare represents a field-versus-literal comparison.
//
// Semantics:
//
//	<field> <op> <value>
//
// Op is one of the ordering operators; ir.OpContains is expressed with
// Contains instead.
type Compare struct {
	Field string // column name
	Op    ir.Op
	Value any // canonical literal
}

func (Compare) predicateNode() {}

// Contains represents a case-sensitive substring test on a string field.
type Contains struct {
	Field     string
	Substring string
}

func (Contains) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Empty Predicates means "always true" (vacuous truth).
type And struct {
	Predicates []Predicate // All must be true (empty = always true)
}

func (And) predicateNode() {}

// Conjoin combines predicates into one, dropping nils and flattening
// nested And nodes. Returns nil when nothing remains.
func Conjoin(preds ...Predicate) Predicate {
	var flat []Predicate
	for _, p := range preds {
		switch pred := p.(type) {
		case nil:
		case And:
			flat = append(flat, pred.Predicates...)
		case *And:
			flat = append(flat, pred.Predicates...)
		default:
			flat = append(flat, p)
		}
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return And{Predicates: flat}
	}
}
