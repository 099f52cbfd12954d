// Package compiler turns clause strings into predicates and comparators over
// a record type.
//
// Compilation happens in two steps:
//
//	[clause string] → clause.Split* → [Statement] → Bind* → [Condition | OrderKey]
//	                                                       → Predicate[T] / Comparator[T]
//	                                                       → queryir (see engine)
//
// Binding resolves each statement's property against the catalog entry
// (case-insensitive, canonical name kept for diagnostics) and coerces the
// raw literal with the property's ir.Kind. Bound conditions are plain data,
// so the same binding feeds both the in-memory closures built here and the
// backend-neutral QueryIR.
//
// Compilation is all-or-nothing: the first failing statement aborts with a
// *ir.QueryError and no partial predicate is returned. A clause with no
// statements compiles to a nil Predicate, which callers treat as "match
// everything".
//
// Compiled predicates and comparators close over immutable data and are
// safe to share between goroutines.
package compiler
