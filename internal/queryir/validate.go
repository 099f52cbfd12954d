package queryir

import (
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// ValidationResult contains structural problems found in a query.
type ValidationResult struct {
	// Valid is true when the query can be handed to a backend.
	Valid bool

	// Problems lists what is wrong. Empty when Valid is true.
	Problems []string
}

// Validate checks that a query is well formed:
//  1. Select has a source
//  2. Every predicate and order key names a field
//  3. Compare uses an ordering operator and carries a value
//  4. Offset is not negative
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// validateQuery validates a query node.
func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

// validateSelect validates a Select query node.
func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addProblem("select has no source")
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
	for i, key := range sel.OrderBy {
		if key.Field == "" {
			v.addProblem("order key %d has no field", i)
		}
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate inside And")
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case Contains:
		v.validateContains(pred)
	case *Contains:
		v.validateContains(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateCompare(c Compare) {
	if c.Field == "" {
		v.addProblem("comparison has no field")
	}
	if c.Op == ir.OpContains {
		v.addProblem("field '%s' uses '~' in a comparison; use Contains", c.Field)
	}
	if c.Value == nil {
		v.addProblem("field '%s' compared to nil", c.Field)
	}
}

func (v *validator) validateContains(c Contains) {
	if c.Field == "" {
		v.addProblem("substring test has no field")
	}
	if c.Substring == "" {
		v.addProblem("field '%s' searched for an empty substring", c.Field)
	}
}

// validateAnd validates all sub-predicates.
func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}
