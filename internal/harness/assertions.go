package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/chipsim/internal/registry"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Code     string // Program text for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Code != "" {
		fmt.Fprintf(&buf, "\nProgram:\n")
		for _, line := range strings.Split(e.Code, "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// evaluateAssertions evaluates all assertions against the chip under test.
// Returns a slice of error messages for failed assertions.
func (h *Harness) evaluateAssertions(entry registry.Entry, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLinked:
			if !entry.Compiled() {
				err = &AssertionError{
					Type:     AssertLinked,
					Expected: fmt.Sprintf("%s linked", h.kind),
					Actual:   "interpreted (compile or link failed)",
				}
			}
		case AssertCodeContains:
			if !strings.Contains(entry.Code, assertion.Text) {
				err = &AssertionError{
					Type:     AssertCodeContains,
					Expected: fmt.Sprintf("program containing %q", assertion.Text),
					Actual:   "not found",
					Code:     entry.Code,
				}
			}
		case AssertInstructionCount, AssertCalls:
			err = h.assertProgram(assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertProgram checks instruction_count and calls against a fresh
// compilation of the chip.
func (h *Harness) assertProgram(assertion Assertion) error {
	prog, err := h.program()
	if err != nil {
		return fmt.Errorf("%s: %w", assertion.Type, err)
	}

	switch assertion.Type {
	case AssertInstructionCount:
		if n := len(prog.Instructions); n != assertion.Count {
			return &AssertionError{
				Type:     AssertInstructionCount,
				Expected: fmt.Sprintf("%d instructions", assertion.Count),
				Actual:   fmt.Sprintf("%d instructions", n),
				Code:     prog.String(),
			}
		}
	case AssertCalls:
		if calls := prog.Calls(); !kindsEqual(calls, assertion.Kinds) {
			return &AssertionError{
				Type:     AssertCalls,
				Expected: fmt.Sprintf("%v", assertion.Kinds),
				Actual:   fmt.Sprintf("%v", calls),
				Code:     prog.String(),
			}
		}
	}
	return nil
}
