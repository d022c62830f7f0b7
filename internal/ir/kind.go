package ir

import "regexp"

// Kind identifies a chip kind in the registry.
// Primitive kinds (gates, boundary markers) and compound kinds share one
// namespace.
type Kind string

// Reserved boundary kinds.
const (
	KindInput       Kind = "input"
	KindOutput      Kind = "output"
	KindInputGroup  Kind = "input_group"
	KindOutputGroup Kind = "output_group"
)

// Class is the closed set of roles a sub-chip can play in a definition.
type Class int

const (
	// ClassChip is any primitive or compound chip.
	ClassChip Class = iota
	// ClassInput is a single external input pin.
	ClassInput
	// ClassOutput is a single external output pin.
	ClassOutput
	// ClassInputGroup is a run of pinCount external input pins.
	ClassInputGroup
	// ClassOutputGroup is a run of pinCount external output pins.
	ClassOutputGroup
)

// Class returns the role of k.
func (k Kind) Class() Class {
	switch k {
	case KindInput:
		return ClassInput
	case KindOutput:
		return ClassOutput
	case KindInputGroup:
		return ClassInputGroup
	case KindOutputGroup:
		return ClassOutputGroup
	default:
		return ClassChip
	}
}

// IsInput reports whether k is an input boundary (plain or grouped).
func (k Kind) IsInput() bool {
	c := k.Class()
	return c == ClassInput || c == ClassInputGroup
}

// IsOutput reports whether k is an output boundary (plain or grouped).
func (k Kind) IsOutput() bool {
	c := k.Class()
	return c == ClassOutput || c == ClassOutputGroup
}

// IsBoundary reports whether k marks a circuit boundary.
func (k Kind) IsBoundary() bool {
	return k.Class() != ClassChip
}

// IsGroup reports whether k is a grouped boundary carrying a pinCount.
func (k Kind) IsGroup() bool {
	c := k.Class()
	return c == ClassInputGroup || c == ClassOutputGroup
}

// identPattern matches kinds that may be called from a compiled program.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Valid reports whether k is usable as a call target in compiled programs.
func (k Kind) Valid() bool {
	return identPattern.MatchString(string(k))
}

// Direction of a boundary.
type Direction int

const (
	// DirNone marks a non-boundary sub-chip.
	DirNone Direction = iota
	// DirIn marks external inputs flowing into the chip.
	DirIn
	// DirOut marks values leaving the chip.
	DirOut
)

// Boundary describes how a sub-chip maps onto the chip's own pins.
type Boundary struct {
	Direction Direction
	Width     int
}
