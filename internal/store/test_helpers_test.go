package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testEntries returns fixtures with duplicate sort keys and sub-second
// timestamps so ordering ties and time text comparison are both exercised.
func testEntries() []Entry {
	return []Entry{
		{Scope: "web", Name: "alice", Description: "login ok", Severity: 1, Elapsed: 120 * time.Millisecond, Timestamp: testBase.Add(3 * time.Hour)},
		{Scope: "web", Name: "bob", Description: "Login failed", Severity: 4, Elapsed: 2 * time.Second, Timestamp: testBase.Add(500 * time.Millisecond)},
		{Scope: "db", Name: "carol", Description: "slow query", Severity: 4, Elapsed: 3 * time.Second, Timestamp: testBase.Add(2 * time.Hour)},
		{Scope: "web", Name: "bobby", Description: "logout", Severity: 2, Elapsed: 10 * time.Millisecond, Timestamp: testBase},
		{Scope: "db", Name: "dave", Description: "login ok", Severity: 1, Elapsed: 0, Timestamp: testBase.Add(2 * time.Hour)},
		{Scope: "web", Name: "alice", Description: "timeout", Severity: 5, Elapsed: time.Minute, Timestamp: testBase.Add(50 * time.Millisecond).In(time.FixedZone("CET", 3600))},
	}
}

// seed inserts testEntries and returns them with assigned IDs.
func seed(t *testing.T, s *Store) []Entry {
	t.Helper()
	entries := testEntries()
	ids, err := s.Insert(context.Background(), entries...)
	require.NoError(t, err)
	for i := range entries {
		entries[i].ID = ids[i]
		entries[i].Timestamp = entries[i].Timestamp.UTC()
	}
	return entries
}
