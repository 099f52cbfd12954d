// Package harness runs YAML query scenarios against the query engine.
//
// A scenario lists records and a set of cases. Each case holds query
// options and the expected outcome: either the ordered record IDs or a
// query error code. Every case runs twice, once in memory (Engine.Apply)
// and once through SQL against a scratch SQLite store. Both paths must agree
// with each other and with the expectation.
//
// Example:
//
//	name: severity-window
//	description: filter, default order and paging
//	records:
//	  - {scope: web, name: alice, severity: 1}
//	  - {scope: web, name: bob, severity: 4}
//	cases:
//	  - name: at least two
//	    options: {where: "severity>=2", limit: 200}
//	    expect: {ids: [2]}
//	  - name: bad literal
//	    options: {where: "severity>high"}
//	    expect: {error: INVALID_VALUE}
//
// Records without a timestamp are stamped from a deterministic clock, one
// minute apart in file order. Records without an ID are numbered from 1.
package harness
