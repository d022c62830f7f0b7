package ir

import (
	"errors"
	"fmt"
)

// ChipError represents a structural, evaluation or linking failure.
//
// Chip errors are never transient: they describe a malformed definition, a
// missing registry entry, or a rejected program. Callers surface them to the
// user rather than retrying.
type ChipError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the chip kind being processed, if known.
	Kind Kind

	// Index is the sub-chip or instruction index involved, or -1.
	Index int

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes chip errors.
type ErrorCode string

const (
	ErrCodeUnknownChipKind        ErrorCode = "UNKNOWN_CHIP_KIND"
	ErrCodeInvalidEntry           ErrorCode = "INVALID_ENTRY"
	ErrCodeInvalidWiring          ErrorCode = "INVALID_WIRING"
	ErrCodeMissingSubChipInput    ErrorCode = "MISSING_SUB_CHIP_INPUT"
	ErrCodeDoubleEvaluation       ErrorCode = "DOUBLE_EVALUATION"
	ErrCodeCyclicDependency       ErrorCode = "CYCLIC_DEPENDENCY"
	ErrCodeNotCompound            ErrorCode = "NOT_COMPOUND"
	ErrCodeCannotCompilePrimitive ErrorCode = "CANNOT_COMPILE_PRIMITIVE"
	ErrCodeUnsafeInstruction      ErrorCode = "UNSAFE_INSTRUCTION"

	// ErrCodeRecursiveComposition indicates a compound kind that contains
	// itself, directly or through other compound kinds.
	ErrCodeRecursiveComposition ErrorCode = "RECURSIVE_COMPOSITION"

	// ErrCodeInputArity indicates an input vector shorter than the chip's
	// input width.
	ErrCodeInputArity ErrorCode = "INPUT_ARITY"

	// ErrCodeBindingOutOfRange indicates a subscript past the end of a
	// binding's values.
	ErrCodeBindingOutOfRange ErrorCode = "BINDING_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *ChipError) Error() string {
	switch {
	case e.Kind != "" && e.Index >= 0:
		return fmt.Sprintf("%s: %s (kind=%s, index=%d)", e.Code, e.Message, e.Kind, e.Index)
	case e.Kind != "":
		return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
	case e.Index >= 0:
		return fmt.Sprintf("%s: %s (index=%d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a ChipError with no index.
func Errorf(code ErrorCode, kind Kind, format string, args ...any) *ChipError {
	return &ChipError{Code: code, Kind: kind, Index: -1, Message: fmt.Sprintf(format, args...)}
}

// IndexErrorf builds a ChipError naming a sub-chip or instruction index.
func IndexErrorf(code ErrorCode, kind Kind, index int, format string, args ...any) *ChipError {
	return &ChipError{Code: code, Kind: kind, Index: index, Message: fmt.Sprintf(format, args...)}
}

// HasCode reports whether err (or anything it wraps) is a ChipError with code.
func HasCode(err error, code ErrorCode) bool {
	var ce *ChipError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// CodeOf returns the code of the first ChipError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ce *ChipError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// NewUnknownKindError creates the error for a registry miss.
func NewUnknownKindError(kind Kind) *ChipError {
	return Errorf(ErrCodeUnknownChipKind, kind, "chip does not exist: %s", kind)
}

// NewCycleError creates the error for a dependency cycle through a sub-chip.
func NewCycleError(kind Kind, index int) *ChipError {
	return IndexErrorf(ErrCodeCyclicDependency, kind, index,
		"sub-chip at index %d is part of a dependency cycle", index)
}
