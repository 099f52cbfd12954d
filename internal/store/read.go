package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/sieve/internal/queryir"
)

// List runs sel against the entries table.
// sel.From must be Table. Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, sel queryir.Select) ([]Entry, error) {
	if sel.From != Table {
		return nil, fmt.Errorf("list entries: unknown table %q", sel.From)
	}

	query, params, err := s.sql.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of entries matching sel's filter.
// Order and window are ignored.
func (s *Store) Count(ctx context.Context, sel queryir.Select) (int64, error) {
	if sel.From != Table {
		return 0, fmt.Errorf("count entries: unknown table %q", sel.From)
	}

	query, params, err := s.sql.CompileCount(sel)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// scanEntry scans a SELECT * row into an Entry.
func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var elapsed int64
	var ts time.Time

	if err := rows.Scan(
		&e.ID, &e.Scope, &e.Name, &e.Description,
		&e.Severity, &elapsed, &ts,
	); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.Elapsed = time.Duration(elapsed)
	e.Timestamp = ts.UTC()
	return e, nil
}
