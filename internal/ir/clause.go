package ir

// Op is a comparison operator of the clause language.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	// OpContains is the search operator "~" (case-sensitive substring).
	OpContains
)

// FilterOps lists the filter operators in detection order.
// Multi-character operators come before their single-character prefixes
// so that "age>=5" is never read as "age" > "=5".
var FilterOps = []Op{OpGe, OpLe, OpNe, OpGt, OpLt, OpEq}

// Symbol returns the operator's clause-language token.
func (o Op) Symbol() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpContains:
		return "~"
	default:
		return "?"
	}
}

func (o Op) String() string {
	return o.Symbol()
}

// Holds reports whether a comparison result c (as returned by Kind.Compare)
// satisfies the operator. OpContains is not an ordering operator and never holds.
func (o Op) Holds(c int) bool {
	switch o {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	default:
		return false
	}
}
