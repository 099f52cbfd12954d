package harness

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `yaml:"name" json:"name"`

	// IDs are the record IDs returned, in order. Empty when the query failed.
	IDs []int64 `yaml:"ids" json:"ids"`

	// Error is the query error code, if the query failed.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`

	// SQL is the statement the store ran. Empty when the query failed.
	SQL string `yaml:"sql,omitempty" json:"sql,omitempty"`

	Pass   bool     `yaml:"-" json:"pass"`
	Errors []string `yaml:"-" json:"errors,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every case matched its expectation on both paths.
	Pass bool `json:"pass"`

	// Cases holds one result per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages, prefixed with the case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddCase records a case result, failing the scenario if the case failed.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(c.Name + ": " + e)
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
