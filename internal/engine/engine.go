package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Config holds the caller-level query policy.
type Config struct {
	// DefaultOrder is the sort key used when a request names none.
	// Empty means unsorted: records keep their input order.
	DefaultOrder string
}

// Engine compiles and runs queries over records of type T.
//
// Thread-safety: an Engine is immutable after New and safe for concurrent use.
type Engine[T any] struct {
	entry *catalog.Entry
	cfg   Config
}

// New creates an Engine for T, discovering T in cat.
// Fails if T is not a struct or DefaultOrder is not a sortable property of T.
func New[T any](cat *catalog.Catalog, cfg Config) (*Engine[T], error) {
	entry, err := catalog.For[T](cat)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultOrder != "" {
		if _, err := compiler.BindSort(entry, cfg.DefaultOrder, false); err != nil {
			return nil, err
		}
	}
	return &Engine[T]{entry: entry, cfg: cfg}, nil
}

// Entry returns the catalog entry of T.
func (e *Engine[T]) Entry() *catalog.Entry {
	return e.entry
}

// Query is a compiled request, reusable across record sets.
type Query[T any] struct {
	Options    Options
	Filter     []compiler.Condition
	Search     []compiler.Condition
	Order      []compiler.OrderKey
	Predicate  compiler.Predicate[T]
	Comparator compiler.Comparator[T]
}

// Compile normalizes opts and compiles every clause.
// The first failing clause aborts compilation; nothing partial is returned.
func (e *Engine[T]) Compile(opts Options) (q *Query[T], err error) {
	start := time.Now()
	defer func() { observeCompile(start, err) }()

	opts = opts.Normalize()

	filter, err := compiler.BindFilter(e.entry, opts.Where)
	if err != nil {
		return nil, err
	}
	search, err := compiler.BindSearch(e.entry, opts.Search)
	if err != nil {
		return nil, err
	}
	order, err := compiler.BindSort(e.entry, e.orderBy(opts.OrderBy), opts.OrderDesc)
	if err != nil {
		return nil, err
	}

	return &Query[T]{
		Options:    opts,
		Filter:     filter,
		Search:     search,
		Order:      order,
		Predicate:  compiler.PredicateOf[T](append(slices.Clip(filter), search...)),
		Comparator: compiler.ComparatorOf[T](order),
	}, nil
}

// orderBy applies the default-sort policy: an empty clause, or one naming
// the default key in any case, sorts by the default key.
func (e *Engine[T]) orderBy(clause string) string {
	if clause == "" || strings.EqualFold(clause, e.cfg.DefaultOrder) {
		return e.cfg.DefaultOrder
	}
	return clause
}

// Apply compiles opts and runs the query over records.
func (e *Engine[T]) Apply(records []T, opts Options) ([]T, error) {
	q, err := e.Compile(opts)
	if err != nil {
		return nil, err
	}
	return q.Apply(records), nil
}

// Plan compiles opts and lowers the query to QueryIR over table.
func (e *Engine[T]) Plan(table string, opts Options) (queryir.Select, error) {
	q, err := e.Compile(opts)
	if err != nil {
		return queryir.Select{}, err
	}
	return q.Plan(table), nil
}

// Apply filters, sorts and windows records. The input slice is not modified.
func (q *Query[T]) Apply(records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if q.Predicate.Matches(r) {
			out = append(out, r)
		}
	}

	if q.Comparator != nil {
		slices.SortStableFunc(out, q.Comparator)
	}

	return window(out, q.Options.Offset, q.Options.Limit)
}

// Plan lowers the query to a Select over table, naming storage columns.
func (q *Query[T]) Plan(table string) queryir.Select {
	preds := make([]queryir.Predicate, 0, len(q.Filter)+len(q.Search))
	for _, c := range q.Filter {
		preds = append(preds, queryir.Compare{
			Field: c.Property.Column,
			Op:    c.Op,
			Value: c.Value,
		})
	}
	for _, c := range q.Search {
		preds = append(preds, queryir.Contains{
			Field:     c.Property.Column,
			Substring: c.Value.(string),
		})
	}

	keys := make([]queryir.OrderKey, 0, len(q.Order))
	for _, k := range q.Order {
		keys = append(keys, queryir.OrderKey{Field: k.Property.Column, Desc: k.Desc})
	}

	return queryir.Select{
		From:    table,
		Filter:  queryir.Conjoin(preds...),
		OrderBy: keys,
		Limit:   q.Options.Limit,
		Offset:  q.Options.Offset,
	}
}

// Scoped returns sel restricted to rows whose column equals value.
// The restriction is conjoined ahead of the request's own clauses.
func Scoped(sel queryir.Select, column string, value any) queryir.Select {
	sel.Filter = queryir.Conjoin(
		queryir.Compare{Field: column, Op: ir.OpEq, Value: value},
		sel.Filter,
	)
	return sel
}

func window[T any](records []T, offset, limit int) []T {
	if offset >= len(records) {
		return records[:0]
	}
	records = records[offset:]
	if limit < len(records) {
		records = records[:limit]
	}
	return records
}
