package harness

import "fmt"

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	In          string `json:"in"`
	Want        string `json:"want"`        // expected output or error code
	Interpreted string `json:"interpreted"` // dynamic interpreter output or error code
	Compiled    string `json:"compiled"`    // engine output, linked where possible
	Pass        bool   `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case, exhaustive vector and assertion passed.
	Pass bool `json:"pass"`

	// Chip is the kind under test.
	Chip string `json:"chip"`

	// Code is the linked program text, empty if the chip fell back to
	// interpretation.
	Code string `json:"code"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Vectors counts the input vectors checked by exhaustive mode.
	Vectors int `json:"vectors,omitempty"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(chip string) *Result {
	return &Result{
		Pass:   true,
		Chip:   chip,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case outcome, failing the result if it did not pass.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.AddError(fmt.Sprintf("case %s: want %s, interpreter %s, compiled %s", c.In, c.Want, c.Interpreted, c.Compiled))
	}
}
