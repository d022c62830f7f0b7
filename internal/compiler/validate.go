package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/chipsim/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidKind      = "E201" // sub-chip kind is not a valid identifier
	ErrInvalidPinCount  = "E202" // group boundary with pinCount < 1
	ErrDanglingWire     = "E203" // wire references a missing sub-chip or negative pin
	ErrWireIntoInput    = "E204" // wire targets an input boundary
	ErrWireFromOutput   = "E205" // wire originates at an output boundary
	ErrPinOutOfRange    = "E206" // pin past a boundary's width
	ErrMultipleDrivers  = "E207" // input pin driven by more than one source
	ErrCyclicDependency = "E208" // sub-chips depend on each other
)

// ValidationError represents a structural problem in a chip definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Index   int    `json:"index"` // sub-chip or wire index named by Field
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ChipError converts e into the ir error taxonomy for kind.
func (e ValidationError) ChipError(kind ir.Kind) *ir.ChipError {
	code := ir.ErrCodeInvalidWiring
	switch e.Code {
	case ErrInvalidKind, ErrInvalidPinCount:
		code = ir.ErrCodeInvalidEntry
	case ErrCyclicDependency:
		return ir.NewCycleError(kind, e.Index)
	}
	return &ir.ChipError{
		Code:    code,
		Kind:    kind,
		Index:   e.Index,
		Message: fmt.Sprintf("%s: %s", e.Field, e.Message),
		Details: map[string]string{"rule": e.Code},
	}
}

// IndexWiringError builds the INVALID_WIRING error for wire i of def.
func IndexWiringError(def *ir.ChipDefinition, i int, msg string) *ir.ChipError {
	return ValidationError{
		Field:   fmt.Sprintf("wires[%d]", i),
		Message: msg,
		Code:    ErrDanglingWire,
		Index:   i,
	}.ChipError(ir.Kind(def.ID))
}

// Validate checks def's structure and returns every problem found.
// Returns nil for a well-formed definition.
func Validate(def *ir.ChipDefinition) []ValidationError {
	return check(def, false)
}

// CheckDefinition checks def's structure and returns the first problem as
// an *ir.ChipError, or nil.
func CheckDefinition(def *ir.ChipDefinition) error {
	if errs := check(def, true); len(errs) > 0 {
		return errs[0].ChipError(ir.Kind(def.ID))
	}
	return nil
}

func check(def *ir.ChipDefinition, failFast bool) []ValidationError {
	var errs []ValidationError
	add := func(e ValidationError) bool {
		errs = append(errs, e)
		return failFast
	}

	for i, c := range def.Chips {
		field := fmt.Sprintf("chips[%d]", i)
		if !c.Kind.Valid() {
			if add(ValidationError{Field: field + ".kind", Code: ErrInvalidKind, Index: i,
				Message: fmt.Sprintf("invalid chip kind %q", c.Kind)}) {
				return errs
			}
		}
		if c.Kind.IsGroup() && c.PinCount < 1 {
			if add(ValidationError{Field: field + ".pinCount", Code: ErrInvalidPinCount, Index: i,
				Message: fmt.Sprintf("%s requires pinCount >= 1, got %d", c.Kind, c.PinCount)}) {
				return errs
			}
		}
	}

	dangling := false
	driven := make(map[ir.PinRef]ir.PinRef)
	for i, w := range def.Wires {
		field := fmt.Sprintf("wires[%d]", i)
		fail := func(code, msg string, args ...any) bool {
			return add(ValidationError{Field: field, Code: code, Index: i, Message: fmt.Sprintf(msg, args...)})
		}

		if !inRange(def, w.From) || !inRange(def, w.To) {
			dangling = true
			if fail(ErrDanglingWire, "wire %v -> %v references a missing sub-chip or pin", w.From, w.To) {
				return errs
			}
			continue
		}

		from, to := def.Chips[w.From.Chip()], def.Chips[w.To.Chip()]
		if to.Kind.IsInput() {
			if fail(ErrWireIntoInput, "wire targets input boundary at sub-chip %d", w.To.Chip()) {
				return errs
			}
		}
		if from.Kind.IsOutput() {
			if fail(ErrWireFromOutput, "wire originates at output boundary at sub-chip %d", w.From.Chip()) {
				return errs
			}
		}
		if b := from.Boundary(); b.Direction == ir.DirIn && w.From.Pin() >= b.Width {
			if fail(ErrPinOutOfRange, "source pin %d past %s width %d", w.From.Pin(), from.Kind, b.Width) {
				return errs
			}
		}
		if b := to.Boundary(); b.Direction == ir.DirOut && w.To.Pin() >= b.Width {
			if fail(ErrPinOutOfRange, "target pin %d past %s width %d", w.To.Pin(), to.Kind, b.Width) {
				return errs
			}
		}
		if prev, ok := driven[w.To]; ok && prev != w.From {
			if fail(ErrMultipleDrivers, "pin %v already driven by %v", w.To, prev) {
				return errs
			}
		}
		driven[w.To] = w.From
	}

	if !dangling {
		if _, err := Sort(def); err != nil {
			var index int
			var ce *ir.ChipError
			if errors.As(err, &ce) {
				index = ce.Index
			}
			add(ValidationError{
				Field:   fmt.Sprintf("chips[%d]", index),
				Code:    ErrCyclicDependency,
				Index:   index,
				Message: "sub-chip is part of a dependency cycle",
			})
		}
	}

	return errs
}

func inRange(def *ir.ChipDefinition, p ir.PinRef) bool {
	return p.Chip() >= 0 && p.Chip() < len(def.Chips) && p.Pin() >= 0
}

// ArityFunc reports the declared input count of kind, or 0 when unknown.
type ArityFunc func(kind ir.Kind) int

// CheckInputs requires every input pin of every non-input sub-chip to be
// wired. A sub-chip's width is its boundary width, its arity, or failing
// both, one past its highest wired pin. Wires past a declared arity are
// INVALID_WIRING; unwired pins are MISSING_SUB_CHIP_INPUT. arity may be nil.
func CheckInputs(def *ir.ChipDefinition, arity ArityFunc) error {
	kind := ir.Kind(def.ID)
	widths := InputWidths(def, arity)

	wired := make([][]bool, len(def.Chips))
	for i, w := range def.Wires {
		c, p := w.To.Chip(), w.To.Pin()
		if c < 0 || c >= len(def.Chips) || p < 0 {
			return IndexWiringError(def, i, "wire references a missing sub-chip")
		}
		if p >= widths[c] {
			return ir.IndexErrorf(ir.ErrCodeInvalidWiring, kind, c,
				"pin %d past %s input width %d", p, def.Chips[c].Kind, widths[c])
		}
		if wired[c] == nil {
			wired[c] = make([]bool, widths[c])
		}
		wired[c][p] = true
	}

	for i, c := range def.Chips {
		if c.Kind.IsInput() {
			continue
		}
		for pin := range widths[i] {
			if wired[i] == nil || !wired[i][pin] {
				return ir.IndexErrorf(ir.ErrCodeMissingSubChipInput, kind, i,
					"input pin %d of %s is not wired", pin, c.Kind)
			}
		}
	}
	return nil
}

// InputWidths returns the number of input slots of each sub-chip. Input
// boundaries have none.
func InputWidths(def *ir.ChipDefinition, arity ArityFunc) []int {
	widths := make([]int, len(def.Chips))
	for i, c := range def.Chips {
		switch b := c.Boundary(); b.Direction {
		case ir.DirIn:
			widths[i] = 0
		case ir.DirOut:
			widths[i] = b.Width
		default:
			if arity != nil {
				widths[i] = arity(c.Kind)
			}
		}
	}
	for _, w := range def.Wires {
		c := w.To.Chip()
		if c < 0 || c >= len(def.Chips) || def.Chips[c].Kind.IsBoundary() {
			continue
		}
		if arity != nil && arity(def.Chips[c].Kind) > 0 {
			continue
		}
		widths[c] = max(widths[c], w.To.Pin()+1)
	}
	return widths
}
