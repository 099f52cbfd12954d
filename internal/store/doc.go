// Package store provides SQLite-backed storage for log entries.
//
// Reads take a QueryIR Select produced by the query engine and run it
// through the SQL compiler, so every filter value is a bound parameter.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// # Ordering
//
// Every List query ends its ORDER BY with rowid ASC. Rows equal on every
// requested key come back in insertion order, which matches a stable
// in-memory sort over the same rows.
package store
