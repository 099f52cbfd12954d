package compiler

import "reflect"

// Predicate is a boolean test over one record.
// A nil Predicate means "no filter" and matches every record.
type Predicate[T any] func(T) bool

// Comparator orders two records, returning a negative, zero or positive int.
type Comparator[T any] func(a, b T) int

// PredicateOf builds the conjunction of conds, evaluated left to right.
// Returns nil when conds is empty.
func PredicateOf[T any](conds []Condition) Predicate[T] {
	if len(conds) == 0 {
		return nil
	}
	conds = append([]Condition(nil), conds...)

	return func(record T) bool {
		v := reflect.ValueOf(record)
		for _, c := range conds {
			if !c.Holds(v) {
				return false
			}
		}
		return true
	}
}

// And conjoins predicates left to right, skipping nil ones.
// Returns nil when every input is nil.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	var live []Predicate[T]
	for _, p := range preds {
		if p != nil {
			live = append(live, p)
		}
	}

	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}

	return func(record T) bool {
		for _, p := range live {
			if !p(record) {
				return false
			}
		}
		return true
	}
}

// Matches applies p to record, treating a nil predicate as true.
func (p Predicate[T]) Matches(record T) bool {
	return p == nil || p(record)
}

// compare orders a and b on the key ascending. Absent values sort first.
func (k OrderKey) compare(a, b reflect.Value) int {
	va, okA := k.Property.Value(a)
	vb, okB := k.Property.Value(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return k.Property.Kind.Compare(va, vb)
}

// ComparatorOf orders by keys[0], breaking ties with each following key.
// Returns nil when keys is empty. Records equal on every key compare as 0;
// use a stable sort to keep their input order.
func ComparatorOf[T any](keys []OrderKey) Comparator[T] {
	if len(keys) == 0 {
		return nil
	}
	keys = append([]OrderKey(nil), keys...)

	return func(a, b T) int {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		for _, k := range keys {
			c := k.compare(va, vb)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}
