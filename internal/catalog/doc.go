// Package catalog discovers and caches the queryable properties of record types.
//
// A record type is any struct. Each exported field becomes a Property with a
// name, a column, an ir.Kind and a reflect-based accessor. Fields tagged
// `query:"-"` (not queryable) or `db:"-"` (not persisted) are excluded;
// `query:"alias"` renames the property and `db:"column"` sets the storage
// column (default: lower-cased name).
//
// The Catalog is an explicit registry keyed by reflect.Type. Discovery runs
// once per type through a singleflight group and the finished Entry is
// published into a sync.Map, so readers never observe a partially built
// entry and lookups of a populated type take no lock. Entries are never
// evicted; the set of record types is assumed small and static.
package catalog
