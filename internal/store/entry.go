package store

import "time"

// Entry is one stored log entry.
//
// Query names are the field names (case-insensitive); db tags name the
// columns the same properties map to in SQL.
type Entry struct {
	ID          int64         `db:"id" json:"id" yaml:"id"`
	Scope       string        `db:"scope" json:"scope" yaml:"scope"`
	Name        string        `db:"username" json:"name" yaml:"name"`
	Description string        `db:"description" json:"description" yaml:"description"`
	Severity    int16         `db:"severity" json:"severity" yaml:"severity"`
	Elapsed     time.Duration `db:"elapsed" json:"elapsed" yaml:"elapsed"`
	Timestamp   time.Time     `db:"timestamp" json:"timestamp" yaml:"timestamp"`

	// URI is assigned when the entry is served; it is not stored or queryable.
	URI string `db:"-" query:"-" json:"uri,omitempty" yaml:"-"`
}
