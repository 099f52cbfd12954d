// Package api serves stored entries over HTTP.
//
// Routes:
//
//	GET /scopes/{scope}/entries   list entries of one scope
//	GET /healthz                  liveness and database ping
//	GET /metrics                  Prometheus metrics
//
// The list route accepts the query parameters where, search, orderby,
// orderdesc, offset and limit. Malformed clauses answer 400 with a JSON
// {"message": ...} body; every other failure answers 500.
package api
