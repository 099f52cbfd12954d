// Package ir provides the foundational value types for sieve.
//
// This package contains the closed set of property kinds a record field may
// declare, the comparison operators of the clause language, and the error
// taxonomy shared by every compiler stage. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Kind is a closed enumeration; Parse, Format and Compare switch over it
//     exhaustively, so adding a kind means touching each of them
//   - Literals use one canonical Go representation per kind (int64 for all
//     signed integers, uint64 for unsigned, float64 for floats)
//   - Every client-input failure is a *QueryError, never a panic
package ir
