package compiler

import (
	"github.com/roach88/sieve/internal/catalog"
)

// Compiler compiles clauses for the record type T.
type Compiler[T any] struct {
	entry *catalog.Entry
}

// New creates a compiler for T, discovering T's properties in cat if needed.
func New[T any](cat *catalog.Catalog) (*Compiler[T], error) {
	e, err := catalog.For[T](cat)
	if err != nil {
		return nil, err
	}
	return &Compiler[T]{entry: e}, nil
}

// Entry returns the catalog entry the compiler resolves names against.
func (c *Compiler[T]) Entry() *catalog.Entry {
	return c.entry
}

// CompileFilter compiles a where clause such as "id>10,name!=bob".
// An empty clause returns a nil predicate and no error.
func (c *Compiler[T]) CompileFilter(where string) (Predicate[T], error) {
	conds, err := BindFilter(c.entry, where)
	if err != nil {
		return nil, err
	}
	return PredicateOf[T](conds), nil
}

// CompileSearch compiles a search clause such as "name~foo".
// An empty clause returns a nil predicate and no error.
func (c *Compiler[T]) CompileSearch(search string) (Predicate[T], error) {
	conds, err := BindSearch(c.entry, search)
	if err != nil {
		return nil, err
	}
	return PredicateOf[T](conds), nil
}

// CompileSort compiles an order-by clause such as "created,id".
// An empty clause returns a nil comparator; choosing a default key is the
// caller's policy.
func (c *Compiler[T]) CompileSort(orderBy string, desc bool) (Comparator[T], error) {
	keys, err := BindSort(c.entry, orderBy, desc)
	if err != nil {
		return nil, err
	}
	return ComparatorOf[T](keys), nil
}
