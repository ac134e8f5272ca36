package harness

// QueryOutcome is what one query of a scenario produced.
type QueryOutcome struct {
	Formula string `json:"formula"`

	// Results are the matching ids, sorted. Empty when the query failed.
	Results []string `json:"results"`

	// Error is the error kind of a failed query, empty on success.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every query matched its expectation.
	Pass bool `json:"pass"`

	// Queries holds one outcome per scenario query, in order.
	Queries []QueryOutcome `json:"queries"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryOutcome{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
