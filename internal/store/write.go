package store

import (
	"context"
	"fmt"
)

// Insert writes entries in one transaction and returns their IDs in order.
// An entry with ID 0 gets the next rowid; a non-zero ID is used as given
// and fails on conflict. Timestamps are stored in UTC.
func (s *Store) Insert(ctx context.Context, entries ...Entry) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert entries: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries
		(id, scope, username, description, severity, elapsed, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("insert entries: prepare: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(entries))
	for i, e := range entries {
		var id any
		if e.ID != 0 {
			id = e.ID
		}
		res, err := stmt.ExecContext(ctx,
			id,
			e.Scope,
			e.Name,
			e.Description,
			e.Severity,
			int64(e.Elapsed),
			e.Timestamp.UTC(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert entry %d: %w", i, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert entry %d: last insert id: %w", i, err)
		}
		ids = append(ids, rowID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert entries: commit: %w", err)
	}
	return ids, nil
}
