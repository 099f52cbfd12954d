// Package queryir provides an abstract query intermediate representation (IR)
// for sieve's clause compiler.
//
// QueryIR is the abstraction boundary between compiled clauses and the
// backends that execute them. The in-memory engine evaluates closures
// directly; storage backends receive a QueryIR Select and translate it.
//
//	[where/search/order_by] → [bound conditions] → [Query IR] → [SQL Backend]
//	                                             → [closures]  (in-memory)
//
// FRAGMENT:
//
// The IR mirrors the clause language exactly:
//   - Select(from, filter, order, window)
//   - Predicates: Compare (=, !=, >, >=, <, <=), Contains, And
//   - Order keys share one direction flag in practice, but each key carries
//     its own Desc so backends need no special casing
//
// The IR EXCLUDES what the clause language cannot express: OR, NOT,
// nesting beyond And, joins and projections.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, which keeps backend type
// switches exhaustive:
//
//	switch p := pred.(type) {
//	case Compare:
//	case Contains:
//	case And:
//	default:
//	    // Impossible - compiler knows all Predicate types
//	}
//
// VALUES:
//
// Compare values use the canonical literal representation from package ir
// (int64, uint64, float64, rune, bool, string, *apd.Decimal, time.Time,
// time.Duration). Backends convert them to their own parameter types.
package queryir
