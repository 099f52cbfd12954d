// Package engine runs compiled queries for one record type.
//
// An Engine owns the caller-level policy that the clause compiler leaves
// open: option clamping and the default sort key. It can execute a query
// in memory over a slice of records (Apply) or lower the same query to
// QueryIR for a storage backend (Plan). Both paths share one compilation
// so they agree on semantics.
//
// Execution order is fixed:
//  1. where and search predicates, conjoined
//  2. stable sort (input order survives ties)
//  3. offset, then limit
package engine
